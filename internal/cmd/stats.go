package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print today's focus score and the last 7 days",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	report, err := analytics.Load(ctx, s, time.Now())
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, r analytics.Report) {
	out := cmd.OutOrStdout()
	t := r.Today
	fmt.Fprintf(out, "%s\n", t.DayKey)
	fmt.Fprintf(out, "  Focus score: %d/100\n", t.Score)
	fmt.Fprintf(out, "  Focus:       %d min in %d sessions\n", t.FocusMinutes, t.FocusSessions)
	fmt.Fprintf(out, "  Breaks:      %d min\n", t.BreakMinutes)

	if len(t.Tasks) > 0 {
		fmt.Fprintln(out, "\nBy task")
		for _, tm := range t.Tasks {
			fmt.Fprintf(out, "  %-32s %4d min\n", tm.Title, tm.Minutes)
		}
	}

	fmt.Fprintln(out, "\nLast 7 days")
	for _, d := range r.Week {
		fmt.Fprintf(out, "  %s %s %4d min\n", d.Label, d.DayKey, d.Minutes)
	}
}
