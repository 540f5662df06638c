package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/application/reports"
	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/schedule"
	"github.com/ffcsa/reports/internal/infrastructure/scheduler"
)

// ReportsHandler exposes the report runs: history, manual triggering and
// scheduler status.
type ReportsHandler struct {
	BaseHandler
	service       *reports.Service
	runs          report.RunRepository
	cronScheduler *scheduler.CronScheduler
	logger        *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(service *reports.Service, runs report.RunRepository, cron *scheduler.CronScheduler, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{
		service:       service,
		runs:          runs,
		cronScheduler: cron,
		logger:        logger.Named("http"),
	}
}

// RegisterRoutes registers report endpoints under the API group
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/runs", h.ListRuns)
	rg.GET("/runs/:id", h.GetRun)
	rg.POST("/reports/run", h.TriggerRun)
	rg.GET("/scheduler/status", h.SchedulerStatus)
}

// ===================== DTOs =====================

// TriggerRunRequest selects what a manual run produces. With no body the run
// covers the next fulfillment window with every report.
type TriggerRunRequest struct {
	// Date is the fulfillment date to run for (YYYY-MM-DD); a non-delivery
	// day resolves to the next Tuesday or Saturday on or after it.
	Date string `json:"date" example:"2026-09-01"`
	// Reports limits the run to the named pipelines.
	Reports []string `json:"reports" example:"checklists,route"`
}

// RunResponse is one run record on the wire
type RunResponse struct {
	ID              string             `json:"id"`
	Trigger         string             `json:"trigger"`
	FulfillmentDate string             `json:"fulfillment_date"`
	Status          string             `json:"status"`
	Error           string             `json:"error,omitempty"`
	Artifacts       []ArtifactResponse `json:"artifacts,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
	FinishedAt      *time.Time         `json:"finished_at,omitempty"`
}

// ArtifactResponse is one produced file on the wire
type ArtifactResponse struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func toRunResponse(run report.Run) RunResponse {
	resp := RunResponse{
		ID:              run.ID.String(),
		Trigger:         string(run.Trigger),
		FulfillmentDate: run.FulfillmentDate.Format(schedule.DateFormat),
		Status:          string(run.Status),
		Error:           run.Error,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
	for _, a := range run.Artifacts {
		resp.Artifacts = append(resp.Artifacts, ArtifactResponse{
			Kind: string(a.Kind),
			Name: a.Name,
			Path: a.Path,
			Size: a.Size,
		})
	}
	return resp
}

// ===================== Endpoints =====================

// ListRuns returns recent runs, optionally filtered by fulfillment date
func (h *ReportsHandler) ListRuns(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		day, err := time.Parse(schedule.DateFormat, date)
		if err != nil {
			h.BadRequest(c, "date: invalid format, expected YYYY-MM-DD")
			return
		}
		runs, err := h.runs.FindByDate(c.Request.Context(), day)
		if err != nil {
			h.InternalError(c, "failed to query runs")
			return
		}
		h.Success(c, toRunResponses(runs))
		return
	}

	limit := 20
	var req struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Limit > 0 {
		limit = req.Limit
	}

	runs, err := h.runs.FindRecent(c.Request.Context(), limit)
	if err != nil {
		h.InternalError(c, "failed to query runs")
		return
	}
	h.Success(c, toRunResponses(runs))
}

func toRunResponses(runs []report.Run) []RunResponse {
	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunResponse(run))
	}
	return out
}

// GetRun returns one run by ID
func (h *ReportsHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id: invalid UUID format")
		return
	}

	run, err := h.runs.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, report.ErrRunNotFound) {
			h.NotFound(c, "run not found")
			return
		}
		h.InternalError(c, "failed to query run")
		return
	}
	h.Success(c, toRunResponse(*run))
}

// TriggerRun starts a manual report run. Without a body the scheduler fires
// its normal run; with a date or report selection the run executes in the
// background against that window.
func (h *ReportsHandler) TriggerRun(c *gin.Context) {
	var req TriggerRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	if req.Date == "" && len(req.Reports) == 0 {
		if h.cronScheduler == nil {
			h.InternalError(c, "scheduler not configured")
			return
		}
		if err := h.cronScheduler.TriggerManualRun(); err != nil {
			switch {
			case errors.Is(err, scheduler.ErrRunInProgress):
				h.Conflict(c, err.Error())
			case errors.Is(err, scheduler.ErrSchedulerNotRunning):
				h.Conflict(c, err.Error())
			default:
				h.InternalError(c, err.Error())
			}
			return
		}
		h.Accepted(c, gin.H{"message": "report run started"})
		return
	}

	anchor := time.Now()
	if req.Date != "" {
		day, err := time.Parse(schedule.DateFormat, req.Date)
		if err != nil {
			h.BadRequest(c, "date: invalid format, expected YYYY-MM-DD")
			return
		}
		anchor = day
	}

	kinds := make([]report.Kind, 0, len(req.Reports))
	monthlyOnly := len(req.Reports) > 0
	for _, name := range req.Reports {
		kind, ok := report.ParseKind(name)
		if !ok {
			h.BadRequest(c, "reports: unknown report "+name)
			return
		}
		if !kind.IsMonthly() {
			monthlyOnly = false
		}
		kinds = append(kinds, kind)
	}

	// Monthly analytics cover the previous calendar month; everything else
	// runs against the next fulfillment window.
	window := schedule.NextFulfillment(anchor)
	if monthlyOnly {
		window = reports.MonthlyWindow(anchor)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := h.service.RunWindow(ctx, report.TriggerManual, window, kinds); err != nil {
			h.logger.Error("manual report run failed", zap.Error(err))
		}
	}()

	h.Accepted(c, gin.H{
		"message":          "report run started",
		"fulfillment_date": window.DateString(),
	})
}

// SchedulerStatus returns the scheduler state and the next run time
func (h *ReportsHandler) SchedulerStatus(c *gin.Context) {
	if h.cronScheduler == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}
	h.Success(c, h.cronScheduler.GetStatus())
}
