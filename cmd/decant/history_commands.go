package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"decant/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit processing history",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryForgetCommand(ctx))
	historyCmd.AddCommand(newHistoryMarkCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var service string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(service, func(_ string, store *ledger.Store) error {
				records, err := store.ListHistory(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, historyJSON(records))
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						strconv.FormatInt(rec.ID, 10),
						rec.IdentityKey,
						rec.Status,
						rec.CreatedAt.Local().Format(time.DateTime),
						rec.SourcePath,
						rec.TargetPath,
					})
				}
				writeTable(cmd.OutOrStdout(),
					[]string{"ID", "Key", "Status", "Created", "Source", "Target"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "Service whose ledger to read")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")
	return cmd
}

func newHistoryForgetCommand(ctx *commandContext) *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "forget KEY...",
		Short: "Delete history so items are processed again on the next run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(service, func(name string, store *ledger.Store) error {
				for _, key := range args {
					removed, err := store.DeleteHistory(cmd.Context(), key)
					if err != nil {
						return err
					}
					if removed == 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: no history for %s\n", name, key)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: forgot %s (%d records)\n", name, key, removed)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "Service whose ledger to edit")
	return cmd
}

func newHistoryMarkCommand(ctx *commandContext) *cobra.Command {
	var service string

	cmd := &cobra.Command{
		Use:   "mark KEY STATUS",
		Short: "Set the status label on an item's history records",
		Long: "Set the status label on an item's history records.\n\n" +
			"Any record keeps the item marked processed regardless of status; use forget to reprocess.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, status := args[0], strings.TrimSpace(args[1])
			if status == "" {
				return fmt.Errorf("status must not be empty")
			}
			return ctx.withLedger(service, func(name string, store *ledger.Store) error {
				updated, err := store.UpdateHistoryStatus(cmd.Context(), key, status)
				if err != nil {
					return err
				}
				if updated == 0 {
					return fmt.Errorf("%s: no history for %s", name, key)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s marked %s (%d records)\n", name, key, status, updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "Service whose ledger to edit")
	return cmd
}

type historyRecordJSON struct {
	ID          int64     `json:"id"`
	IdentityKey string    `json:"identity_key"`
	SourcePath  string    `json:"source_path"`
	TargetPath  string    `json:"target_path"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func historyJSON(records []ledger.HistoryRecord) []historyRecordJSON {
	out := make([]historyRecordJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, historyRecordJSON{
			ID:          rec.ID,
			IdentityKey: rec.IdentityKey,
			SourcePath:  rec.SourcePath,
			TargetPath:  rec.TargetPath,
			Status:      rec.Status,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out
}
