package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shortfactory/internal/metrics"
	"shortfactory/internal/resilience"
	"shortfactory/internal/stage"
	"shortfactory/internal/statestore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue depths, stage readiness, and circuit-breaker state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			defer app.Close()

			health, err := app.orchestrator.HealthCheck(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderQueueDepths(health.QueueDepths))
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderStageHealth("Stages", health.Stages))
			if len(health.Producers) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStageHealth("Producers", health.Producers))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderBreakers(health.Breakers))

			if app.metrics != nil {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderStageMetrics(app.metrics.Snapshot()))
			}
			return nil
		},
	}
}

func renderStageMetrics(snap metrics.Snapshot) string {
	rows := make([][]string, 0, len(snap.Stages))
	for _, s := range snap.Stages {
		errorRate := "0%"
		if s.Attempts > 0 {
			errorRate = fmt.Sprintf("%.0f%%", float64(s.Failures)/float64(s.Attempts)*100)
		}
		rows = append(rows, []string{
			s.Name,
			humanize.Comma(s.Attempts),
			humanize.Comma(s.Successes),
			errorRate,
			s.P50.Round(time.Millisecond).String(),
			s.P95.Round(time.Millisecond).String(),
		})
	}
	return "Stage throughput\n" + renderTable(
		[]string{"Stage", "Attempts", "Successes", "Error rate", "P50", "P95"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderQueueDepths(depths map[statestore.Status]int) string {
	statuses := statestore.AllStatuses()
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		count := depths[status]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), humanize.Comma(int64(count))})
	}
	return renderTable([]string{"Status", "Items"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderStageHealth(title string, entries []stage.Health) string {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	rows := make([][]string, 0, len(entries))
	for _, h := range entries {
		status := colorize(h.Ready, "ready", "unready")
		detail := h.Detail
		rows = append(rows, []string{h.Name, status, detail})
	}
	return title + "\n" + renderTable([]string{"Name", "Status", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
}

func renderBreakers(breakers map[string]resilience.BreakerState) string {
	names := make([]string, 0, len(breakers))
	for name := range breakers {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, colorizeBreaker(breakers[name])})
	}
	return "Circuit breakers\n" + renderTable([]string{"Service/Class", "State"}, rows, []columnAlignment{alignLeft, alignLeft})
}

func colorize(ok bool, okLabel, badLabel string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		if ok {
			return okLabel
		}
		return badLabel
	}
	if ok {
		return color.GreenString(okLabel)
	}
	return color.RedString(badLabel)
}

func colorizeBreaker(state resilience.BreakerState) string {
	label := string(state)
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return label
	}
	switch state {
	case resilience.StateClosed:
		return color.GreenString(label)
	case resilience.StateHalfOpen:
		return color.YellowString(label)
	case resilience.StateOpen:
		return color.RedString(label)
	default:
		return label
	}
}
