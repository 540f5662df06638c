package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/application/reports"
	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/domain/schedule"
)

func newRunCmd() *cobra.Command {
	var date, start, end string

	cmd := &cobra.Command{
		Use:   "run [report...]",
		Short: "Run reports once and exit",
		Long: "Runs the named reports (or all of them) for the next fulfillment window " +
			"and exits. Report names: " + kindNames() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), date, start, end, args)
		},
	}

	cmd.Flags().StringVar(&date, "date", "",
		"fulfillment date (YYYY-MM-DD); a non-delivery day resolves to the next Tuesday or Saturday")
	cmd.Flags().StringVar(&start, "start", "",
		"export window start (YYYY-MM-DD); must be paired with --end")
	cmd.Flags().StringVar(&end, "end", "",
		"export window end (YYYY-MM-DD); must be paired with --start")
	return cmd
}

func runOnce(ctx context.Context, date, start, end string, names []string) error {
	kinds := make([]report.Kind, 0, len(names))
	for _, name := range names {
		kind, ok := report.ParseKind(name)
		if !ok {
			return fmt.Errorf("unknown report %q (valid: %s)", name, kindNames())
		}
		kinds = append(kinds, kind)
	}

	window, err := resolveWindow(date, start, end)
	if err != nil {
		return err
	}
	if len(kinds) > 0 && allMonthly(kinds) && start == "" {
		// Monthly analytics default to the previous calendar month rather
		// than a fulfillment window; an explicit --start/--end still wins.
		anchor := time.Now()
		if date != "" {
			anchor, _ = time.Parse(schedule.DateFormat, date)
		}
		window = reports.MonthlyWindow(anchor)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("running reports once",
		zap.String("fulfillment_date", window.DateString()),
		zap.Int("reports", len(kinds)),
	)

	runCtx, cancel := context.WithTimeout(ctx, a.cfg.Scheduler.JobTimeout)
	defer cancel()

	return a.service.RunWindow(runCtx, report.TriggerManual, window, kinds)
}

// resolveWindow picks the export window: an explicit --start/--end range
// wins, then --date (resolved to its delivery day), then the next window
// from today.
func resolveWindow(date, start, end string) (schedule.Window, error) {
	if (start == "") != (end == "") {
		return schedule.Window{}, fmt.Errorf("--start and --end must be given together")
	}
	if start != "" {
		from, err := time.Parse(schedule.DateFormat, start)
		if err != nil {
			return schedule.Window{}, fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", start)
		}
		to, err := time.Parse(schedule.DateFormat, end)
		if err != nil {
			return schedule.Window{}, fmt.Errorf("invalid --end %q, expected YYYY-MM-DD", end)
		}
		if to.Before(from) {
			return schedule.Window{}, fmt.Errorf("--end %s is before --start %s", end, start)
		}
		return schedule.Window{Start: from, End: to, Date: to}, nil
	}
	if date != "" {
		day, err := time.Parse(schedule.DateFormat, date)
		if err != nil {
			return schedule.Window{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
		}
		return schedule.NextFulfillment(day), nil
	}
	return schedule.NextFulfillment(time.Now()), nil
}

func allMonthly(kinds []report.Kind) bool {
	for _, kind := range kinds {
		if !kind.IsMonthly() {
			return false
		}
	}
	return true
}

func kindNames() string {
	kinds := append(report.AllKinds(), report.MonthlyKinds()...)
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return strings.Join(names, ", ")
}
