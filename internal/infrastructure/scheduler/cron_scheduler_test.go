package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/domain/report"
)

type fakeRunner struct {
	mu           sync.Mutex
	calls        int
	monthlyCalls int
	failures     int
	trigger      report.Trigger
	done         chan struct{}
}

func (r *fakeRunner) Run(_ context.Context, trigger report.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.trigger = trigger
	if r.done != nil && r.calls == 1 {
		defer close(r.done)
	}
	if r.calls <= r.failures {
		return errors.New("export unavailable")
	}
	return nil
}

func (r *fakeRunner) RunMonthly(_ context.Context, trigger report.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monthlyCalls++
	r.trigger = trigger
	return nil
}

func (r *fakeRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testSchedulerConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.RetryAttempts = 0
	cfg.RetryDelay = time.Millisecond
	cfg.JobTimeout = time.Second
	return cfg
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.RunAtHour = 24
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.RunAtMinute = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestShouldRun(t *testing.T) {
	s, err := NewCronScheduler(DefaultConfig(), &fakeRunner{}, zap.NewNop())
	require.NoError(t, err)

	monday := time.Date(2026, 8, 31, 5, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 9, 4, 5, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)

	assert.True(t, s.shouldRun(monday))
	assert.True(t, s.shouldRun(friday))

	// Right day, wrong minute.
	assert.False(t, s.shouldRun(monday.Add(time.Minute)))
	// Right time, not a report day.
	assert.False(t, s.shouldRun(tuesday))
}

func TestShouldRunMonthly(t *testing.T) {
	s, err := NewCronScheduler(DefaultConfig(), &fakeRunner{}, zap.NewNop())
	require.NoError(t, err)

	firstOfMonth := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)

	assert.True(t, s.shouldRunMonthly(firstOfMonth))
	// Wrong minute.
	assert.False(t, s.shouldRunMonthly(firstOfMonth.Add(time.Minute)))
	// Not the first of the month.
	assert.False(t, s.shouldRunMonthly(time.Date(2026, 9, 2, 5, 0, 0, 0, time.UTC)))
}

func TestExecuteMonthlyPass(t *testing.T) {
	runner := &fakeRunner{}
	s, err := NewCronScheduler(testSchedulerConfig(), runner, zap.NewNop())
	require.NoError(t, err)

	s.execute(context.Background(), report.TriggerScheduled, runner.RunMonthly)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Equal(t, 1, runner.monthlyCalls)
	assert.Equal(t, 0, runner.calls)
	assert.Equal(t, report.TriggerScheduled, runner.trigger)
}

func TestCalculateNextRunTime(t *testing.T) {
	s, err := NewCronScheduler(DefaultConfig(), &fakeRunner{}, zap.NewNop())
	require.NoError(t, err)

	t.Run("before the run time on a report day", func(t *testing.T) {
		s.calculateNextRunTime(time.Date(2026, 8, 31, 4, 0, 0, 0, time.UTC)) // Monday
		require.NotNil(t, s.nextRunAt)
		assert.Equal(t, time.Date(2026, 8, 31, 5, 0, 0, 0, time.UTC), *s.nextRunAt)
	})

	t.Run("after the run time rolls to the next report day", func(t *testing.T) {
		s.calculateNextRunTime(time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)) // Monday
		require.NotNil(t, s.nextRunAt)
		assert.Equal(t, time.Date(2026, 9, 4, 5, 0, 0, 0, time.UTC), *s.nextRunAt) // Friday
	})

	t.Run("mid-week rolls forward to Friday", func(t *testing.T) {
		s.calculateNextRunTime(time.Date(2026, 9, 2, 4, 0, 0, 0, time.UTC)) // Wednesday
		require.NotNil(t, s.nextRunAt)
		assert.Equal(t, time.Date(2026, 9, 4, 5, 0, 0, 0, time.UTC), *s.nextRunAt)
	})
}

func TestExecuteRetries(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		runner := &fakeRunner{failures: 2}
		cfg := testSchedulerConfig()
		cfg.RetryAttempts = 3
		s, err := NewCronScheduler(cfg, runner, zap.NewNop())
		require.NoError(t, err)

		s.execute(context.Background(), report.TriggerScheduled, runner.Run)

		assert.Equal(t, 3, runner.callCount())
		status := s.GetStatus()
		assert.Equal(t, "", status["last_error"])
	})

	t.Run("records error after exhausting retries", func(t *testing.T) {
		runner := &fakeRunner{failures: 10}
		cfg := testSchedulerConfig()
		cfg.RetryAttempts = 1
		s, err := NewCronScheduler(cfg, runner, zap.NewNop())
		require.NoError(t, err)

		s.execute(context.Background(), report.TriggerScheduled, runner.Run)

		assert.Equal(t, 2, runner.callCount())
		status := s.GetStatus()
		assert.Equal(t, "export unavailable", status["last_error"])
	})
}

func TestTriggerManualRun(t *testing.T) {
	t.Run("requires a started scheduler", func(t *testing.T) {
		s, err := NewCronScheduler(testSchedulerConfig(), &fakeRunner{}, zap.NewNop())
		require.NoError(t, err)

		assert.ErrorIs(t, s.TriggerManualRun(), ErrSchedulerNotRunning)
	})

	t.Run("runs with the manual trigger", func(t *testing.T) {
		runner := &fakeRunner{done: make(chan struct{})}
		s, err := NewCronScheduler(testSchedulerConfig(), runner, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		require.NoError(t, s.TriggerManualRun())

		select {
		case <-runner.done:
		case <-time.After(2 * time.Second):
			t.Fatal("manual run did not execute")
		}

		runner.mu.Lock()
		assert.Equal(t, report.TriggerManual, runner.trigger)
		runner.mu.Unlock()
	})
}

func TestStartStop(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.Enabled = true
	s, err := NewCronScheduler(cfg, &fakeRunner{}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	// Starting twice is a no-op.
	require.NoError(t, s.Start(context.Background()))

	status := s.GetStatus()
	assert.Equal(t, true, status["is_running"])
	assert.NotNil(t, s.GetNextRunAt())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}
