package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/schedule"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
	"github.com/ffcsa/reports/internal/infrastructure/mailer"
	"github.com/ffcsa/reports/internal/infrastructure/printing"
)

const ordersCSV = `Order,Email,Last Name,First Name,Phone,Fulfillment Name,Fulfillment Address,Fulfillment Date,Fulfillment Type,Product ID,Product,Package Name,Item Unit,Vendor,Category,Quantity,# of Items,Packing Tag,Customer Note,Price List,About This Customer
1001,jane@example.com,Doe,Jane,5415550134,Oak St,123 Oak Ave,2026-09-01,pickup,101,Whole Milk,Half Gallon,each,Creamy Cow,Dairy,2,,,Please leave in the cooler,Members,
1001,jane@example.com,Doe,Jane,5415550134,Oak St,123 Oak Ave,2026-09-01,pickup,202,Ground Beef,1 lb,each,Deck Family Farm,Meat,1,,,,Members,
1002,bob@example.com,Smith,Bob,5415550199,Home Delivery - Eugene,455 River Rd,2026-09-01,delivery,303,Kale,Bunch,each,Camas Swale,Produce,1,,,,Members,Gate code 4411
1003,amy@example.com,Adams,Amy,5415550101,FFCSA Membership Purchase,ONLINE DELIVERY,2026-09-01,delivery,404,Harvest Share,Monthly,each,FFCSA,Membership,1,,,,Members,
`

const monthlyOrdersCSV = `Order,Email,Last Name,First Name,Phone,Fulfillment Name,Product ID,Product,Package Name,Item Unit,Vendor,Category,Quantity,# of Items,Product Subtotal
2001,jane@example.com,Doe,Jane,5415550134,Oak St,101,Whole Milk,Half Gallon,each,Creamy Cow,Dairy,2,,12.50
2002,bob@example.com,Smith,Bob,5415550199,Oak St,202,Ground Beef,1 lb,each,Deck Family Farm,Meat,1,,40.00
2003,jane@example.com,Doe,Jane,5415550134,Oak St,101,Whole Milk,Half Gallon,each,Creamy Cow,Dairy,1,,7.50
2004,amy@example.com,Adams,Amy,5415550101,FFCSA Membership Purchase,404,Harvest Share,Monthly,each,FFCSA,Membership,1,,250.00
`

const customersCSV = `Customer,Store Credit
"Doe, Jane",$120.00
"Smith, Bob",0
"Young, Al",$310.25
`

// productBook builds a one-column product export workbook.
func productBook(t *testing.T, ids ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Local Line Product ID"))
	for i, id := range ids {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), id))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type fakeExporter struct {
	csv          []byte
	dairyBook    []byte
	frozenBook   []byte
	customersCSV []byte
	strategies   []localline.FulfillmentStrategy
	ordersErr    error

	tagCalls       int
	customersCalls int
}

func (f *fakeExporter) FetchOrders(_ context.Context, _ localline.OrdersExportParams) ([]byte, error) {
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	return f.csv, nil
}

func (f *fakeExporter) DownloadProductsByTags(_ context.Context, tagIDs []string) ([]byte, error) {
	f.tagCalls++
	if tagIDs[0] == "2244" {
		return f.dairyBook, nil
	}
	return f.frozenBook, nil
}

func (f *fakeExporter) DownloadCustomers(_ context.Context) ([]byte, error) {
	f.customersCalls++
	return f.customersCSV, nil
}

func (f *fakeExporter) FulfillmentStrategies(_ context.Context) ([]localline.FulfillmentStrategy, error) {
	return f.strategies, nil
}

type fakeRenderer struct {
	requests []*printing.RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	f.requests = append(f.requests, req)
	return &printing.RenderResult{PDFData: []byte("%PDF-1.4 test")}, nil
}

func (f *fakeRenderer) Close() error { return nil }

type fakeMailer struct {
	messages []*mailer.Message
}

func (f *fakeMailer) Send(_ context.Context, msg *mailer.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

type memRunRepo struct {
	runs map[uuid.UUID]report.Run
}

func newMemRunRepo() *memRunRepo {
	return &memRunRepo{runs: make(map[uuid.UUID]report.Run)}
}

func (r *memRunRepo) Create(_ context.Context, run *report.Run) error {
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *report.Run) error {
	if _, ok := r.runs[run.ID]; !ok {
		return report.ErrRunNotFound
	}
	r.runs[run.ID] = *run
	return nil
}

func (r *memRunRepo) FindByID(_ context.Context, id uuid.UUID) (*report.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, report.ErrRunNotFound
	}
	return &run, nil
}

func (r *memRunRepo) FindRecent(_ context.Context, _ int) ([]report.Run, error) {
	var out []report.Run
	for _, run := range r.runs {
		out = append(out, run)
	}
	return out, nil
}

func (r *memRunRepo) FindByDate(_ context.Context, _ time.Time) ([]report.Run, error) {
	return r.FindRecent(context.Background(), 0)
}

type fakeColors struct {
	assigned map[string]string
	saved    bool
}

func (f *fakeColors) ColorFor(dropsite string) string {
	if f.assigned == nil {
		f.assigned = make(map[string]string)
	}
	f.assigned[dropsite] = "#ffd1dc"
	return "#ffd1dc"
}

func (f *fakeColors) Save() error {
	f.saved = true
	return nil
}

type serviceFixture struct {
	service  *Service
	exporter *fakeExporter
	renderer *fakeRenderer
	mailer   *fakeMailer
	opsMail  *fakeMailer
	runs     *memRunRepo
	colors   *fakeColors
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	dir := t.TempDir()

	vendorOrderPath := filepath.Join(dir, "vendor_order.csv")
	require.NoError(t, os.WriteFile(vendorOrderPath, []byte(
		"Vendor,Location\nDeck Family Farm,Deck Meat & Eggs\nCreamy Cow,Dairy\nCamas Swale,Produce\n"), 0o644))

	storage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: filepath.Join(dir, "reports"),
	})
	require.NoError(t, err)

	f := &serviceFixture{
		exporter: &fakeExporter{
			csv:        []byte(ordersCSV),
			dairyBook:  productBook(t, "101"),
			frozenBook: productBook(t, "202"),
			strategies: []localline.FulfillmentStrategy{
				{
					Name: "Oak St",
					Availability: localline.StrategyAvailability{
						Instructions: "Behind the blue gate",
					},
				},
			},
		},
		renderer: &fakeRenderer{},
		mailer:   &fakeMailer{},
		opsMail:  &fakeMailer{},
		runs:     newMemRunRepo(),
		colors:   &fakeColors{},
	}

	f.service = NewService(
		Config{
			OverridesPath:    filepath.Join(dir, "missing_overrides.json"),
			VendorOrderPath:  vendorOrderPath,
			ChecklistsTo:     []string{"crew@example.com"},
			DeliveryOrdersTo: []string{"drivers@example.com"},
		},
		f.exporter,
		printing.NewTemplateEngine(),
		f.renderer,
		storage,
		f.mailer,
		mailer.NewNotifier(f.opsMail, "ops@example.com"),
		f.colors,
		f.runs,
		zap.NewNop(),
	)
	// Monday morning; the next fulfillment is Tuesday September 1.
	f.service.now = func() time.Time { return time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC) }

	return f
}

func TestServiceRun(t *testing.T) {
	f := newServiceFixture(t)

	require.NoError(t, f.service.Run(context.Background(), report.TriggerScheduled))

	require.Len(t, f.runs.runs, 1)
	var run report.Run
	for _, r := range f.runs.runs {
		run = r
	}
	assert.Equal(t, report.StatusSucceeded, run.Status)
	assert.Equal(t, "2026-09-01", run.FulfillmentDate.Format(schedule.DateFormat))
	assert.Len(t, run.Artifacts, 7)

	// Every pipeline but the route sheet renders a PDF.
	assert.Len(t, f.renderer.requests, 6)

	// One mail per report, none to the operator.
	assert.Len(t, f.mailer.messages, 7)
	assert.Empty(t, f.opsMail.messages)

	subjects := make([]string, 0, len(f.mailer.messages))
	for _, msg := range f.mailer.messages {
		subjects = append(subjects, msg.Subject)
		assert.Contains(t, msg.Subject, "2026-09-01")
		require.Len(t, msg.Attachments, 1)
	}
	assert.Contains(t, subjects, "FFCSA Reports: Checklists 2026-09-01")
	assert.Contains(t, subjects, "FFCSA Reports: OptimaRoute File 2026-09-01")

	// Dropsite colors assigned and persisted; the membership dropsite is
	// suppressed and never gets a color.
	assert.True(t, f.colors.saved)
	assert.Contains(t, f.colors.assigned, "Oak St")
	assert.NotContains(t, f.colors.assigned, "FFCSA Membership Purchase")
}

func TestServiceRunWindowSelectsKinds(t *testing.T) {
	f := newServiceFixture(t)
	window := schedule.NextFulfillment(time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC))

	err := f.service.RunWindow(context.Background(), report.TriggerManual, window, []report.Kind{report.KindRoute})

	require.NoError(t, err)
	require.Len(t, f.mailer.messages, 1)
	assert.Equal(t, "FFCSA Reports: OptimaRoute File 2026-09-01", f.mailer.messages[0].Subject)
	assert.Equal(t, []string{"drivers@example.com"}, f.mailer.messages[0].To)
	assert.Equal(t, "optimaroute.xlsx", f.mailer.messages[0].Attachments[0].Filename)
	assert.Empty(t, f.renderer.requests)
}

func TestServiceRunMonthly(t *testing.T) {
	f := newServiceFixture(t)
	f.service.config.AnalyticsTo = []string{"farm@example.com"}
	f.exporter.csv = []byte(monthlyOrdersCSV)
	f.exporter.customersCSV = []byte(customersCSV)

	require.NoError(t, f.service.RunMonthly(context.Background(), report.TriggerScheduled))

	// The clock reads August 31, so the report covers July.
	require.Len(t, f.runs.runs, 1)
	for _, run := range f.runs.runs {
		assert.Equal(t, report.StatusSucceeded, run.Status)
		assert.Equal(t, "2026-07-31", run.FulfillmentDate.Format(schedule.DateFormat))
		require.Len(t, run.Artifacts, 2)
	}

	// Monthly runs never touch the tag exports or the packout reference.
	assert.Zero(t, f.exporter.tagCalls)
	assert.Equal(t, 1, f.exporter.customersCalls)

	require.Len(t, f.mailer.messages, 2)
	subjects := make([]string, 0, 2)
	for _, msg := range f.mailer.messages {
		subjects = append(subjects, msg.Subject)
		assert.Equal(t, []string{"farm@example.com"}, msg.To)
		require.Len(t, msg.Attachments, 1)
	}
	assert.Contains(t, subjects, "FFCSA Reports: Monthly Vendor Report for 2026-07-31")
	assert.Contains(t, subjects, "FFCSA Reports: Monthly Customer Balance Report for 2026-07-31")

	for _, msg := range f.mailer.messages {
		if msg.Attachments[0].Filename == "monthly_customers.pdf" {
			// Two members carry credit; the zero balance is dropped.
			assert.Contains(t, msg.Body, "$430.25")
			assert.Contains(t, msg.Body, "2 members")
		}
	}
}

func TestMonthlyWindow(t *testing.T) {
	w := MonthlyWindow(time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-07-01", w.StartString())
	assert.Equal(t, "2026-07-31", w.EndString())
	assert.Equal(t, "2026-07-31", w.DateString())
}

func TestServiceRunExportFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.exporter.ordersErr = fmt.Errorf("backoffice unavailable")

	err := f.service.Run(context.Background(), report.TriggerScheduled)

	require.Error(t, err)

	require.Len(t, f.runs.runs, 1)
	for _, run := range f.runs.runs {
		assert.Equal(t, report.StatusFailed, run.Status)
		assert.Contains(t, run.Error, "backoffice unavailable")
		assert.Empty(t, run.Artifacts)
	}

	// The operator hears about it; the crew gets nothing.
	require.Len(t, f.opsMail.messages, 1)
	assert.Equal(t, []string{"ops@example.com"}, f.opsMail.messages[0].To)
	assert.Contains(t, f.opsMail.messages[0].Subject, "export download")
	assert.Empty(t, f.mailer.messages)
}

func TestServiceSkipsMailWithoutRecipients(t *testing.T) {
	f := newServiceFixture(t)
	f.service.config.ChecklistsTo = nil
	window := schedule.NextFulfillment(time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC))

	err := f.service.RunWindow(context.Background(), report.TriggerManual, window, []report.Kind{report.KindChecklists})

	require.NoError(t, err)
	assert.Empty(t, f.mailer.messages)
	// The artifact is still rendered and stored.
	for _, run := range f.runs.runs {
		require.Len(t, run.Artifacts, 1)
		assert.Equal(t, "checklists.pdf", run.Artifacts[0].Name)
	}
}
