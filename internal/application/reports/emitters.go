package reports

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/domain/manifest"
	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/sales"
	"github.com/ffcsa/reports/internal/domain/schedule"
	"github.com/ffcsa/reports/internal/domain/vendor"
	"github.com/ffcsa/reports/internal/infrastructure/excel"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
	"github.com/ffcsa/reports/internal/infrastructure/mailer"
	"github.com/ffcsa/reports/internal/infrastructure/printing"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// emitChecklists renders the dropsite checklists, the master rollup and the
// frozen and dairy packlists as one PDF.
func (s *Service) emitChecklists(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	resolved := manifest.AssignDispositions(in.lines, in.overrides)
	doc := printing.BuildChecklistDocument(
		manifest.Build(in.lines, in.overrides),
		manifest.Group(resolved),
		window.Date,
	)

	pdf, err := s.renderPDF(ctx, printing.TemplateChecklist, "Checklists "+window.DateString(), doc)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindChecklists, window, "checklists.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.ChecklistsTo,
		fmt.Sprintf("FFCSA Reports: Checklists %s", window.DateString()),
		"Attached are the dropsite checklists with the frozen and dairy packlists.",
		mailer.Attachment{Filename: "checklists.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitDeliveryOrders renders one order sheet per customer.
func (s *Service) emitDeliveryOrders(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	groups := manifest.Group(manifest.AssignDispositions(in.lines, in.overrides))
	sheet := printing.BuildDeliveryOrdersSheet(groups, in.reference, window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateDeliveryOrders, "Delivery Orders "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindDeliveryOrders, window, "delivery_orders.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.DeliveryOrdersTo,
		fmt.Sprintf("FFCSA Reports: Delivery Orders %s", window.DateString()),
		"Attached are the individual delivery order sheets.",
		mailer.Attachment{Filename: "delivery_orders.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitCustomerNotes renders the order notes left this cycle.
func (s *Service) emitCustomerNotes(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	groups := manifest.Group(manifest.AssignDispositions(in.lines, in.overrides))
	sheet := printing.BuildCustomerNotesSheet(groups, window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateCustomerNotes, "Customer Notes "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindCustomerNotes, window, "customer_notes.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.ChecklistsTo,
		fmt.Sprintf("FFCSA Reports: Customer Notes %s", window.DateString()),
		"Attached are the customer notes for this cycle.",
		mailer.Attachment{Filename: "customer_notes.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitSetup renders the packout setup totals by location and vendor.
func (s *Service) emitSetup(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	sheet := printing.BuildSetupSheet(in.reference.BuildSetup(in.lines), window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateSetup, "Packout Setup "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindSetup, window, "setup.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.ChecklistsTo,
		fmt.Sprintf("FFCSA Reports: Packout Setup %s", window.DateString()),
		"Attached are the packout setup totals.",
		mailer.Attachment{Filename: "setup.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitLabels renders the color-coded tote labels and persists any colors
// assigned to new dropsites.
func (s *Service) emitLabels(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	groups := manifest.Group(manifest.AssignDispositions(in.lines, in.overrides))

	colors := make(map[string]string)
	for _, group := range groups {
		if group.Suppressed() {
			continue
		}
		colors[group.Name] = s.colors.ColorFor(group.Name)
	}

	sheet := printing.BuildLabelSheet(groups, colors, window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateLabels, "Tote Labels "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindLabels, window, "labels.pdf", pdf); err != nil {
		return err
	}

	if err := s.colors.Save(); err != nil {
		s.logger.Warn("failed to persist dropsite colors", zap.Error(err))
	}

	return s.send(ctx, s.config.ChecklistsTo,
		fmt.Sprintf("FFCSA Reports: Tote Labels %s", window.DateString()),
		"Attached are the tote labels.",
		mailer.Attachment{Filename: "labels.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitRoute builds the route-planning workbook: one stop per customer and
// delivery address, pickup instructions pulled from the fulfillment
// strategies.
func (s *Service) emitRoute(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	strategies, err := s.exporter.FulfillmentStrategies(ctx)
	if err != nil {
		return fmt.Errorf("fulfillment strategies: %w", err)
	}

	stops := BuildRouteStops(
		manifest.AssignDispositions(in.lines, in.overrides),
		localline.NewStrategyIndex(strategies),
	)

	book, err := excel.BuildRouteSheet(stops)
	if err != nil {
		return err
	}
	defer book.Close()

	buf, err := book.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("route sheet: %w", err)
	}

	data := buf.Bytes()
	if err := s.storeArtifact(ctx, run, report.KindRoute, window, "optimaroute.xlsx", data); err != nil {
		return err
	}

	return s.send(ctx, s.config.DeliveryOrdersTo,
		fmt.Sprintf("FFCSA Reports: OptimaRoute File %s", window.DateString()),
		"Attached is the OptimaRoute file with individual orders for each dropsite.",
		mailer.Attachment{Filename: "optimaroute.xlsx", ContentType: xlsxContentType, Data: data})
}

// emitMonthlyVendors renders product sales summed per vendor over the
// previous calendar month.
func (s *Service) emitMonthlyVendors(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	sheet := printing.BuildMonthlyVendorsSheet(sales.SummarizeVendors(in.lines), window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateMonthlyVendors, "Monthly Vendor Sales "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindMonthlyVendors, window, "monthly_vendors.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.AnalyticsTo,
		fmt.Sprintf("FFCSA Reports: Monthly Vendor Report for %s", window.DateString()),
		"Attached are the product sales per vendor for the previous month.",
		mailer.Attachment{Filename: "monthly_vendors.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitMonthlyCustomers renders the outstanding member store credit
// balances as of the report date.
func (s *Service) emitMonthlyCustomers(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	summary := sales.SummarizeBalances(in.balances)
	sheet := printing.BuildMonthlyCustomersSheet(summary, window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateMonthlyCustomers, "Monthly Member Balances "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindMonthlyCustomers, window, "monthly_customers.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.AnalyticsTo,
		fmt.Sprintf("FFCSA Reports: Monthly Customer Balance Report for %s", window.DateString()),
		fmt.Sprintf("Attached are the member store credit balances. Total outstanding: $%s across %d members.",
			summary.Total.StringFixed(2), len(summary.Customers)),
		mailer.Attachment{Filename: "monthly_customers.pdf", ContentType: pdfContentType, Data: pdf})
}

// emitVendorOrders renders the per-vendor supply totals.
func (s *Service) emitVendorOrders(ctx context.Context, run *report.Run, window schedule.Window, in *inputs) error {
	sheet := printing.BuildVendorOrdersSheet(vendor.BuildVendorOrders(in.lines), window.Date)

	pdf, err := s.renderPDF(ctx, printing.TemplateVendorOrders, "Vendor Orders "+window.DateString(), sheet)
	if err != nil {
		return err
	}
	if err := s.storeArtifact(ctx, run, report.KindVendorOrders, window, "vendor_orders.pdf", pdf); err != nil {
		return err
	}

	return s.send(ctx, s.config.ChecklistsTo,
		fmt.Sprintf("FFCSA Reports: Vendor Orders %s", window.DateString()),
		"Attached are the per-vendor order totals.",
		mailer.Attachment{Filename: "vendor_orders.pdf", ContentType: pdfContentType, Data: pdf})
}
