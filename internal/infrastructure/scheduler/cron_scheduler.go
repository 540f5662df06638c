// Package scheduler runs the report pipelines on the fulfillment calendar:
// a minute ticker fires the configured run hour on report days (the day
// before each delivery), with retries and a per-run timeout.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/schedule"
)

// cronTickerInterval is the interval at which the scheduler checks the clock
const cronTickerInterval = 1 * time.Minute

// Runner executes report runs. Implemented by the application layer; the
// scheduler only decides when to call it. Run is the packing report pass,
// RunMonthly the analytics pass over the previous month.
type Runner interface {
	Run(ctx context.Context, trigger report.Trigger) error
	RunMonthly(ctx context.Context, trigger report.Trigger) error
}

// Config holds the cron scheduler settings
type Config struct {
	// Enabled indicates if the scheduler fires on its own
	Enabled bool
	// RunAtHour is the hour (0-23) to run on report days
	RunAtHour int
	// RunAtMinute is the minute (0-59) to run
	RunAtMinute int
	// JobTimeout is the maximum time one run may take
	JobTimeout time.Duration
	// RetryAttempts is the number of retries after a failed run
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultConfig returns the default scheduler configuration: 5:00 AM on
// report days, three retries five minutes apart.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RunAtHour:     5,
		RunAtMinute:   0,
		JobTimeout:    30 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Minute,
	}
}

// Validate checks the configured run time.
func (c Config) Validate() error {
	if c.RunAtHour < 0 || c.RunAtHour > 23 {
		return ErrInvalidConfig
	}
	if c.RunAtMinute < 0 || c.RunAtMinute > 59 {
		return ErrInvalidConfig
	}
	return nil
}

// CronScheduler fires report runs at the configured time on report days.
type CronScheduler struct {
	config Config
	runner Runner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runActive bool

	lastRunAt *time.Time
	lastError string
	nextRunAt *time.Time
}

// NewCronScheduler creates a scheduler around a runner.
func NewCronScheduler(config Config, runner Runner, logger *zap.Logger) (*CronScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronScheduler{
		config: config,
		runner: runner,
		logger: logger.Named("scheduler"),
	}, nil
}

// Start starts the ticker loop. A disabled scheduler starts successfully
// but never fires on its own; manual triggers still work.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime(time.Now())

	if s.config.Enabled {
		s.wg.Add(1)
		go s.cronLoop(ctx)
	}

	s.logger.Info("report scheduler started",
		zap.Bool("enabled", s.config.Enabled),
		zap.Int("run_at_hour", s.config.RunAtHour),
		zap.Int("run_at_minute", s.config.RunAtMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the ticker loop and waits for an in-flight run to finish.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("report scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("report scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop checks every minute whether the run time was reached.
func (s *CronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRunMonthly(now) {
				s.execute(ctx, report.TriggerScheduled, s.runner.RunMonthly)
			}
			if s.shouldRun(now) {
				s.execute(ctx, report.TriggerScheduled, s.runner.Run)
				s.calculateNextRunTime(now.Add(time.Minute))
			}
		}
	}
}

// shouldRun reports whether the scheduled time was reached. Runs fire only
// on report days, the day before each Tuesday and Saturday delivery.
func (s *CronScheduler) shouldRun(now time.Time) bool {
	if !schedule.IsReportDay(now) {
		return false
	}
	return now.Hour() == s.config.RunAtHour && now.Minute() == s.config.RunAtMinute
}

// shouldRunMonthly reports whether the monthly analytics pass should fire:
// the first of each month at the configured run time.
func (s *CronScheduler) shouldRunMonthly(now time.Time) bool {
	if now.Day() != 1 {
		return false
	}
	return now.Hour() == s.config.RunAtHour && now.Minute() == s.config.RunAtMinute
}

// calculateNextRunTime finds the next report-day run time from now.
func (s *CronScheduler) calculateNextRunTime(now time.Time) {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RunAtHour, s.config.RunAtMinute, 0, 0, now.Location())
	if now.After(next) || !schedule.IsReportDay(next) {
		for i := 0; i < 7; i++ {
			next = next.AddDate(0, 0, 1)
			if schedule.IsReportDay(next) {
				break
			}
		}
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// execute runs one report pass, with timeout and retries.
func (s *CronScheduler) execute(ctx context.Context, trigger report.Trigger, pass func(context.Context, report.Trigger) error) {
	s.mu.Lock()
	if s.runActive {
		s.mu.Unlock()
		s.logger.Warn("skipping run: previous run still active")
		return
	}
	s.runActive = true
	now := time.Now()
	s.lastRunAt = &now
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.runActive = false
		s.mu.Unlock()
	}()

	var lastErr error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Info("retrying report run",
				zap.Int("attempt", attempt),
				zap.Duration("delay", s.config.RetryDelay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.RetryDelay):
			}
		}

		runCtx := ctx
		var cancel context.CancelFunc
		if s.config.JobTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		}
		lastErr = pass(runCtx, trigger)
		if cancel != nil {
			cancel()
		}

		if lastErr == nil {
			s.mu.Lock()
			s.lastError = ""
			s.mu.Unlock()
			s.logger.Info("report run completed", zap.String("trigger", string(trigger)))
			return
		}

		s.logger.Error("report run failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}

	s.mu.Lock()
	s.lastError = lastErr.Error()
	s.mu.Unlock()
}

// TriggerManualRun starts a run now, regardless of the calendar.
// The run uses a background context so it survives the HTTP request that
// triggered it.
func (s *CronScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.runActive {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(context.Background(), report.TriggerManual, s.runner.Run)
	}()
	return nil
}

// GetStatus returns the current scheduler state for the status endpoint.
func (s *CronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":       s.config.Enabled,
		"is_running":    s.isRunning,
		"run_active":    s.runActive,
		"run_at_hour":   s.config.RunAtHour,
		"run_at_minute": s.config.RunAtMinute,
		"last_run_at":   s.lastRunAt,
		"last_error":    s.lastError,
		"next_run_at":   s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *CronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
