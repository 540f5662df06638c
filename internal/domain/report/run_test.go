package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRun(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("explicit kinds", func(t *testing.T) {
		run := NewRun(TriggerManual, date, []Kind{KindChecklists})

		assert.NotEqual(t, run.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, StatusRunning, run.Status)
		assert.Equal(t, []Kind{KindChecklists}, run.Kinds)
		assert.Nil(t, run.FinishedAt)
		assert.Zero(t, run.Duration())
	})

	t.Run("empty kinds means all", func(t *testing.T) {
		run := NewRun(TriggerScheduled, date, nil)
		assert.Equal(t, AllKinds(), run.Kinds)
	})
}

func TestRunComplete(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		run := NewRun(TriggerManual, date, nil)
		run.Complete(nil)

		assert.Equal(t, StatusSucceeded, run.Status)
		assert.Empty(t, run.Error)
		require.NotNil(t, run.FinishedAt)
		assert.GreaterOrEqual(t, run.Duration(), time.Duration(0))
	})

	t.Run("failure records the error", func(t *testing.T) {
		run := NewRun(TriggerScheduled, date, nil)
		run.Complete(errors.New("export poll timed out"))

		assert.Equal(t, StatusFailed, run.Status)
		assert.Equal(t, "export poll timed out", run.Error)
	})
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("checklists")
	assert.True(t, ok)
	assert.Equal(t, KindChecklists, k)

	_, ok = ParseKind("invoices")
	assert.False(t, ok)

	for _, k := range append(AllKinds(), MonthlyKinds()...) {
		parsed, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
}

func TestKindIsMonthly(t *testing.T) {
	for _, k := range MonthlyKinds() {
		assert.True(t, k.IsMonthly())
	}
	for _, k := range AllKinds() {
		assert.False(t, k.IsMonthly())
	}
}
