// Package reports orchestrates the report pipelines: fetch the order and
// product exports for a fulfillment window, run the disposition and
// grouping pipeline, render each sheet, store the artifacts and mail them
// to the crew. Every run is recorded; any failure goes to the operator.
package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/domain/order"
	"github.com/ffcsa/reports/internal/domain/packing"
	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/sales"
	"github.com/ffcsa/reports/internal/domain/schedule"
	"github.com/ffcsa/reports/internal/domain/vendor"
	"github.com/ffcsa/reports/internal/infrastructure/csvfile"
	"github.com/ffcsa/reports/internal/infrastructure/excel"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
	"github.com/ffcsa/reports/internal/infrastructure/logger"
	"github.com/ffcsa/reports/internal/infrastructure/mailer"
	"github.com/ffcsa/reports/internal/infrastructure/printing"
	"github.com/ffcsa/reports/internal/infrastructure/scheduler"
)

// Internal tag IDs marking dairy and frozen products on the platform. The
// product exports filtered by these tags drive disposition resolution.
var (
	dairyTagIDs  = []string{"2244"}
	frozenTagIDs = []string{"2245", "2266"}
)

// Exporter is the slice of the backoffice client the pipelines consume.
type Exporter interface {
	FetchOrders(ctx context.Context, params localline.OrdersExportParams) ([]byte, error)
	DownloadProductsByTags(ctx context.Context, tagIDs []string) ([]byte, error)
	DownloadCustomers(ctx context.Context) ([]byte, error)
	FulfillmentStrategies(ctx context.Context) ([]localline.FulfillmentStrategy, error)
}

// LabelColors hands out stable dropsite colors for tote labels.
type LabelColors interface {
	ColorFor(dropsite string) string
	Save() error
}

// Config holds report pipeline settings: reference file locations and the
// recipient lists per report stream.
type Config struct {
	// OverridesPath is the manual disposition override JSON side-file.
	OverridesPath string
	// VendorOrderPath is the packout vendor order reference CSV.
	VendorOrderPath string
	// ChecklistsTo receives the packing reports (checklists, notes, setup,
	// labels, vendor orders).
	ChecklistsTo []string
	// DeliveryOrdersTo receives the delivery orders PDF and the route sheet.
	DeliveryOrdersTo []string
	// AnalyticsTo receives the monthly vendor sales and member balance
	// reports.
	AnalyticsTo []string
}

// Service runs the report pipelines. It implements scheduler.Runner.
type Service struct {
	config   Config
	exporter Exporter
	engine   *printing.TemplateEngine
	renderer printing.PDFRenderer
	storage  printing.ReportStorage
	mailer   mailer.Mailer
	notifier *mailer.Notifier
	colors   LabelColors
	runs     report.RunRepository
	logger   *zap.Logger

	// now is the clock used to pick the default window; tests override it.
	now func() time.Time
}

// NewService wires the report pipelines together.
func NewService(
	config Config,
	exporter Exporter,
	engine *printing.TemplateEngine,
	renderer printing.PDFRenderer,
	storage printing.ReportStorage,
	m mailer.Mailer,
	notifier *mailer.Notifier,
	colors LabelColors,
	runs report.RunRepository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:   config,
		exporter: exporter,
		engine:   engine,
		renderer: renderer,
		storage:  storage,
		mailer:   m,
		notifier: notifier,
		colors:   colors,
		runs:     runs,
		logger:   logger.Named("reports"),
		now:      time.Now,
	}
}

// Run executes the full packing report set for the next fulfillment
// window.
func (s *Service) Run(ctx context.Context, trigger report.Trigger) error {
	return s.RunWindow(ctx, trigger, schedule.NextFulfillment(s.now()), report.AllKinds())
}

// RunMonthly executes the monthly analytics reports over the previous
// calendar month.
func (s *Service) RunMonthly(ctx context.Context, trigger report.Trigger) error {
	return s.RunWindow(ctx, trigger, MonthlyWindow(s.now()), report.MonthlyKinds())
}

// MonthlyWindow is the previous calendar month as a report window; the
// report date is the month's last day.
func MonthlyWindow(now time.Time) schedule.Window {
	first, last := schedule.LastMonth(now)
	return schedule.Window{Start: first, End: last, Date: last}
}

// RunWindow executes the selected pipelines for one fulfillment window and
// records the run. Pipelines are independent: one failing does not stop the
// others, but any failure marks the run failed and alerts the operator.
func (s *Service) RunWindow(ctx context.Context, trigger report.Trigger, window schedule.Window, kinds []report.Kind) error {
	run := report.NewRun(trigger, window.Date, kinds)
	ctx, runLog := logger.WithRunID(ctx, s.logger, run.ID.String())

	if err := s.runs.Create(ctx, run); err != nil {
		runLog.Warn("failed to record run start", zap.Error(err))
	}

	runLog.Info("report run started",
		zap.String("trigger", string(trigger)),
		zap.String("fulfillment_date", window.DateString()),
		zap.Int("reports", len(run.Kinds)),
	)

	err := s.emit(ctx, run, window)

	run.Complete(err)
	if uerr := s.runs.Update(ctx, run); uerr != nil {
		runLog.Warn("failed to record run result", zap.Error(uerr))
	}

	runLog.Info("report run finished",
		zap.String("status", string(run.Status)),
		zap.Duration("duration", run.Duration()),
		zap.Int("artifacts", len(run.Artifacts)),
	)
	return err
}

// emit fetches the shared inputs once and runs each requested pipeline.
func (s *Service) emit(ctx context.Context, run *report.Run, window schedule.Window) error {
	in, err := s.fetchInputs(ctx, window, run.Kinds)
	if err != nil {
		s.notifyError(ctx, "export download", err)
		return err
	}

	var errs []error
	for _, kind := range run.Kinds {
		if err := s.emitKind(ctx, run, window, kind, in); err != nil {
			logger.FromContext(ctx).Error("report failed",
				zap.String("report", string(kind)),
				zap.Error(err))
			s.notifyError(ctx, string(kind), err)
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) emitKind(ctx context.Context, run *report.Run, window schedule.Window, kind report.Kind, in *inputs) error {
	switch kind {
	case report.KindChecklists:
		return s.emitChecklists(ctx, run, window, in)
	case report.KindDeliveryOrders:
		return s.emitDeliveryOrders(ctx, run, window, in)
	case report.KindCustomerNotes:
		return s.emitCustomerNotes(ctx, run, window, in)
	case report.KindSetup:
		return s.emitSetup(ctx, run, window, in)
	case report.KindLabels:
		return s.emitLabels(ctx, run, window, in)
	case report.KindRoute:
		return s.emitRoute(ctx, run, window, in)
	case report.KindVendorOrders:
		return s.emitVendorOrders(ctx, run, window, in)
	case report.KindMonthlyVendors:
		return s.emitMonthlyVendors(ctx, run, window, in)
	case report.KindMonthlyCustomers:
		return s.emitMonthlyCustomers(ctx, run, window, in)
	}
	return fmt.Errorf("unknown report kind %q", kind)
}

// inputs are the shared, read-only raw materials of one run. Each pipeline
// rebuilds its own grouping from the raw lines; nothing here is mutated
// after fetchInputs returns. Only the slices the requested pipelines need
// are populated.
type inputs struct {
	lines     []order.OrderLine
	overrides packing.Overrides
	reference *vendor.ReferenceList
	balances  []sales.CustomerBalance
}

// inputNeeds marks which raw materials a set of pipelines requires.
type inputNeeds struct {
	lines    bool
	packing  bool
	balances bool
}

func needsFor(kinds []report.Kind) inputNeeds {
	var n inputNeeds
	for _, k := range kinds {
		switch k {
		case report.KindMonthlyVendors:
			n.lines = true
		case report.KindMonthlyCustomers:
			n.balances = true
		default:
			n.lines = true
			n.packing = true
		}
	}
	return n
}

// fetchInputs downloads the exports the requested pipelines consume. The
// vendor reference list and the manual overrides degrade with a warning
// when unavailable; the exports themselves are required. A monthly-only
// run never touches the tag exports or the packout reference data.
func (s *Service) fetchInputs(ctx context.Context, window schedule.Window, kinds []report.Kind) (*inputs, error) {
	needs := needsFor(kinds)
	in := &inputs{
		overrides: packing.Overrides{},
		reference: vendor.NewReferenceList(nil),
	}

	if needs.lines {
		csvBody, err := s.exporter.FetchOrders(ctx, localline.OrdersExportParams{
			Start: window.StartString(),
			End:   window.EndString(),
		})
		if err != nil {
			return nil, fmt.Errorf("orders export: %w", err)
		}

		in.lines, err = csvfile.ParseOrderLines(bytes.NewReader(csvBody))
		if err != nil {
			return nil, err
		}
		s.logger.Info("orders export parsed",
			zap.Int("lines", len(in.lines)),
			zap.String("start", window.StartString()),
			zap.String("end", window.EndString()),
		)
	}

	if needs.packing {
		overrides, err := s.loadOverrides(ctx)
		if err != nil {
			return nil, err
		}
		in.overrides = overrides

		reference, err := csvfile.LoadVendorOrder(s.config.VendorOrderPath)
		if err != nil {
			s.logger.Warn("vendor order reference unavailable, packout ordering degrades",
				zap.String("path", s.config.VendorOrderPath),
				zap.Error(err))
			reference = vendor.NewReferenceList(nil)
		}
		in.reference = reference
	}

	if needs.balances {
		csvBody, err := s.exporter.DownloadCustomers(ctx)
		if err != nil {
			return nil, fmt.Errorf("customers export: %w", err)
		}
		in.balances, err = csvfile.ParseCustomerBalances(bytes.NewReader(csvBody))
		if err != nil {
			return nil, err
		}
		s.logger.Info("customers export parsed", zap.Int("customers", len(in.balances)))
	}

	return in, nil
}

// loadOverrides builds the disposition override table: product IDs from the
// dairy and frozen tag exports, with the manual JSON overrides layered on
// top (manual entries win).
func (s *Service) loadOverrides(ctx context.Context) (packing.Overrides, error) {
	overrides := packing.Overrides{}

	dairyIDs, err := s.downloadTagIDs(ctx, dairyTagIDs)
	if err != nil {
		return nil, fmt.Errorf("dairy products export: %w", err)
	}
	for _, id := range dairyIDs {
		overrides[id] = packing.DispositionDairy
	}

	frozenIDs, err := s.downloadTagIDs(ctx, frozenTagIDs)
	if err != nil {
		return nil, fmt.Errorf("frozen products export: %w", err)
	}
	for _, id := range frozenIDs {
		overrides[id] = packing.DispositionFrozen
	}

	manual, err := packing.LoadOverrides(s.config.OverridesPath)
	if err != nil {
		s.logger.Warn("disposition overrides unavailable, continuing without",
			zap.String("path", s.config.OverridesPath),
			zap.Error(err))
	}
	for key, disposition := range manual {
		overrides[key] = disposition
	}

	return overrides, nil
}

func (s *Service) downloadTagIDs(ctx context.Context, tagIDs []string) ([]string, error) {
	book, err := s.exporter.DownloadProductsByTags(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	return excel.ReadProductIDColumn(book, excel.ProductIDHeader)
}

// renderPDF renders one sheet through its registered template and page
// setup.
func (s *Service) renderPDF(ctx context.Context, templateName, title string, data any) ([]byte, error) {
	tmpl, ok := printing.GetReportTemplate(templateName)
	if !ok {
		return nil, fmt.Errorf("unknown sheet template %q", templateName)
	}

	rendered, err := s.engine.RenderNamed(templateName, data)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        rendered.HTML,
		PaperSize:   tmpl.PaperSize,
		Orientation: tmpl.Orientation,
		Margins:     tmpl.Margins,
		Title:       title,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// storeArtifact saves a rendered file and records it on the run.
func (s *Service) storeArtifact(ctx context.Context, run *report.Run, kind report.Kind, window schedule.Window, name string, data []byte) error {
	result, err := s.storage.Store(ctx, &printing.StoreRequest{
		Date: window.Date,
		Name: name,
		Data: data,
	})
	if err != nil {
		return err
	}
	run.AddArtifact(report.Artifact{
		Kind: kind,
		Name: name,
		Path: result.Path,
		Size: result.Size,
	})
	return nil
}

// send mails one report. An empty recipient list skips the mail with a
// warning so development setups work without mail plumbing.
func (s *Service) send(ctx context.Context, to []string, subject, body string, attachments ...mailer.Attachment) error {
	if len(to) == 0 {
		s.logger.Warn("no recipients configured, skipping mail", zap.String("subject", subject))
		return nil
	}
	return s.mailer.Send(ctx, &mailer.Message{
		To:          to,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
	})
}

func (s *Service) notifyError(ctx context.Context, step string, err error) {
	if nerr := s.notifier.NotifyError(ctx, step, err); nerr != nil {
		s.logger.Error("failed to send operator alert", zap.Error(nerr))
	}
}

// Ensure Service satisfies scheduler.Runner
var _ scheduler.Runner = (*Service)(nil)
