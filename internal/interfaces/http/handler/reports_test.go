package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffcsa/reports/internal/domain/report"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRunRepo struct {
	byID   map[uuid.UUID]report.Run
	recent []report.Run
}

func (r *stubRunRepo) Create(_ context.Context, _ *report.Run) error { return nil }
func (r *stubRunRepo) Update(_ context.Context, _ *report.Run) error { return nil }

func (r *stubRunRepo) FindByID(_ context.Context, id uuid.UUID) (*report.Run, error) {
	run, ok := r.byID[id]
	if !ok {
		return nil, report.ErrRunNotFound
	}
	return &run, nil
}

func (r *stubRunRepo) FindRecent(_ context.Context, limit int) ([]report.Run, error) {
	if limit < len(r.recent) {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func (r *stubRunRepo) FindByDate(_ context.Context, date time.Time) ([]report.Run, error) {
	var out []report.Run
	for _, run := range r.recent {
		if run.FulfillmentDate.Equal(date) {
			out = append(out, run)
		}
	}
	return out, nil
}

func newTestRouter(repo *stubRunRepo) *gin.Engine {
	engine := gin.New()
	h := NewReportsHandler(nil, repo, nil, nil)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func completedRun(date time.Time) report.Run {
	run := report.NewRun(report.TriggerScheduled, date, nil)
	run.AddArtifact(report.Artifact{
		Kind: report.KindChecklists,
		Name: "checklists.pdf",
		Path: "2026-09-01/checklists.pdf",
		Size: 2048,
	})
	run.Complete(nil)
	return *run
}

func TestListRuns(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	run := completedRun(date)
	router := newTestRouter(&stubRunRepo{
		byID:   map[uuid.UUID]report.Run{run.ID: run},
		recent: []report.Run{run},
	})

	t.Run("returns recent runs", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Success bool          `json:"success"`
			Data    []RunResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "SUCCEEDED", resp.Data[0].Status)
		assert.Equal(t, "2026-09-01", resp.Data[0].FulfillmentDate)
		require.Len(t, resp.Data[0].Artifacts, 1)
		assert.Equal(t, "checklists.pdf", resp.Data[0].Artifacts[0].Name)
	})

	t.Run("filters by fulfillment date", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs?date=2026-09-05", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []RunResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs?date=tomorrow", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRun(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	run := completedRun(date)
	router := newTestRouter(&stubRunRepo{
		byID:   map[uuid.UUID]report.Run{run.ID: run},
		recent: []report.Run{run},
	})

	t.Run("returns a run by ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs/"+run.ID.String(), nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data RunResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, run.ID.String(), resp.Data.ID)
	})

	t.Run("404 for an unknown run", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs/"+uuid.NewString(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("400 for a malformed ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/runs/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTriggerRunValidation(t *testing.T) {
	router := newTestRouter(&stubRunRepo{})

	t.Run("rejects a malformed date", func(t *testing.T) {
		body := strings.NewReader(`{"date": "Sep 1"}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/reports/run", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an unknown report name", func(t *testing.T) {
		body := strings.NewReader(`{"reports": ["payroll"]}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/reports/run", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scheduler trigger unavailable without a scheduler", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/reports/run", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestSchedulerStatusWithoutScheduler(t *testing.T) {
	router := newTestRouter(&stubRunRepo{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/scheduler/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp.Data["enabled"])
}
