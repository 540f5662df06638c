// Package report defines the report run records: which sheets a run
// produced, for which fulfillment date, and how it ended. Runs are the
// audit trail behind the scheduler and the manual trigger endpoint.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies one report pipeline.
type Kind string

const (
	KindChecklists     Kind = "checklists"
	KindDeliveryOrders Kind = "delivery_orders"
	KindCustomerNotes  Kind = "customer_notes"
	KindSetup          Kind = "setup"
	KindLabels         Kind = "labels"
	KindRoute          Kind = "route"
	KindVendorOrders   Kind = "vendor_orders"

	// Monthly analytics, run on the first of the month over the previous
	// calendar month.
	KindMonthlyVendors   Kind = "monthly_vendors"
	KindMonthlyCustomers Kind = "monthly_customers"
)

// AllKinds lists every packing report pipeline in run order.
func AllKinds() []Kind {
	return []Kind{
		KindChecklists,
		KindDeliveryOrders,
		KindCustomerNotes,
		KindSetup,
		KindLabels,
		KindRoute,
		KindVendorOrders,
	}
}

// MonthlyKinds lists the monthly analytics pipelines.
func MonthlyKinds() []Kind {
	return []Kind{
		KindMonthlyVendors,
		KindMonthlyCustomers,
	}
}

// IsMonthly reports whether the kind runs on the monthly calendar rather
// than the fulfillment calendar.
func (k Kind) IsMonthly() bool {
	switch k {
	case KindMonthlyVendors, KindMonthlyCustomers:
		return true
	}
	return false
}

// ParseKind validates a report name from the CLI or API.
func ParseKind(s string) (Kind, bool) {
	for _, k := range append(AllKinds(), MonthlyKinds()...) {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Trigger records what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Status is the run lifecycle state.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Artifact is one file a run produced.
type Artifact struct {
	Kind Kind
	Name string
	Path string
	Size int64
}

// Run is one execution of the report pipelines.
type Run struct {
	ID              uuid.UUID
	Trigger         Trigger
	FulfillmentDate time.Time
	Kinds           []Kind
	Status          Status
	Error           string
	Artifacts       []Artifact
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// NewRun starts a run record for the given pipelines.
func NewRun(trigger Trigger, fulfillmentDate time.Time, kinds []Kind) *Run {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}
	return &Run{
		ID:              uuid.New(),
		Trigger:         trigger,
		FulfillmentDate: fulfillmentDate,
		Kinds:           kinds,
		Status:          StatusRunning,
		StartedAt:       time.Now(),
	}
}

// AddArtifact records a produced file.
func (r *Run) AddArtifact(a Artifact) {
	r.Artifacts = append(r.Artifacts, a)
}

// Complete marks the run finished; a non-nil err marks it failed.
func (r *Run) Complete(err error) {
	now := time.Now()
	r.FinishedAt = &now
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSucceeded
	r.Error = ""
}

// Duration is how long the run took; zero until it finishes.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("report: run not found")

// RunRepository persists run records.
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)
	FindRecent(ctx context.Context, limit int) ([]Run, error)
	FindByDate(ctx context.Context, fulfillmentDate time.Time) ([]Run, error)
}
