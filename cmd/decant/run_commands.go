package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"decant/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var serviceNames []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract and relocate pending items, then clean up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, serviceNames, runner.ModeFull, jsonOutput)
		},
	}
	cmd.Flags().StringSliceVarP(&serviceNames, "service", "s", nil, "Service to run (repeatable; default all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output run reports as JSON")
	return cmd
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var serviceNames []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove processed sources and stray target entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, serviceNames, runner.ModeCleanupOnly, jsonOutput)
		},
	}
	cmd.Flags().StringSliceVarP(&serviceNames, "service", "s", nil, "Service to clean up (repeatable; default all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output run reports as JSON")
	return cmd
}

type reportJSON struct {
	Service        string   `json:"service"`
	RunID          string   `json:"run_id"`
	Pending        int      `json:"pending"`
	Skipped        int      `json:"skipped"`
	Succeeded      int      `json:"succeeded"`
	Partial        int      `json:"partial"`
	Failed         int      `json:"failed"`
	SourcesRemoved []string `json:"sources_removed,omitempty"`
	TargetsRemoved []string `json:"targets_removed,omitempty"`
	DurationMS     int64    `json:"duration_ms"`
	Error          string   `json:"error,omitempty"`
}

func executeRun(cmd *cobra.Command, ctx *commandContext, names []string, mode runner.Mode, jsonOutput bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger()
	if err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reports, err := runner.New(cfg, logger).Run(signalCtx, names, mode)
	if err != nil && len(reports) == 0 {
		return err
	}

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}

	if jsonOutput {
		payload := make([]reportJSON, 0, len(reports))
		for _, r := range reports {
			entry := reportJSON{
				Service:        r.Service,
				RunID:          r.RunID,
				Pending:        r.Pending,
				Skipped:        r.Skipped,
				Succeeded:      r.Succeeded,
				Partial:        r.Partial,
				Failed:         r.Failed,
				SourcesRemoved: r.Cleanup.SourcesRemoved,
				TargetsRemoved: r.Cleanup.TargetsRemoved,
				DurationMS:     r.Duration.Milliseconds(),
			}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			payload = append(payload, entry)
		}
		if err := writeJSON(cmd, payload); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(reports))
		for _, r := range reports {
			status := "ok"
			if r.Err != nil {
				status = r.Err.Error()
			}
			rows = append(rows, []string{
				r.Service,
				fmt.Sprintf("%d", r.Pending),
				fmt.Sprintf("%d", r.Succeeded),
				fmt.Sprintf("%d", r.Partial),
				fmt.Sprintf("%d", r.Failed),
				fmt.Sprintf("%d", r.Skipped),
				fmt.Sprintf("%d", len(r.Cleanup.SourcesRemoved)+len(r.Cleanup.TargetsRemoved)),
				status,
			})
		}
		writeTable(cmd.OutOrStdout(),
			[]string{"Service", "Pending", "Done", "Partial", "Failed", "Skipped", "Removed", "Status"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
		)
	}

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d services failed; see log for details", failed, len(reports))
	}
	return nil
}
