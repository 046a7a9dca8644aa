package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"decant/internal/ledger"
	"decant/internal/naming"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage titles and passwords for identity keys",
	}
	metadataCmd.AddCommand(newMetadataSetCommand(ctx))
	metadataCmd.AddCommand(newMetadataListCommand(ctx))
	return metadataCmd
}

func newMetadataSetCommand(ctx *commandContext) *cobra.Command {
	var service string
	var meta ledger.Metadata

	cmd := &cobra.Command{
		Use:   "set KEY",
		Short: "Create or replace the metadata of an identity key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta.IdentityKey = strings.TrimSpace(args[0])
			return ctx.withLedger(service, func(name string, store *ledger.Store) error {
				if err := store.UpsertMetadata(cmd.Context(), meta); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", name, meta.IdentityKey, naming.FolderName(meta.IdentityKey, meta.DisplayTitle()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "Service whose ledger to edit")
	cmd.Flags().StringVar(&meta.Title, "title", "", "Title used for the target folder name")
	cmd.Flags().StringVar(&meta.AltTitle, "alt-title", "", "Fallback title when --title is empty")
	cmd.Flags().StringVar(&meta.UnzipKey, "unzip-key", "", "Archive password")
	cmd.Flags().StringVar(&meta.OpenKey, "open-key", "", "Fallback archive password")
	return cmd
}

func newMetadataListCommand(ctx *commandContext) *cobra.Command {
	var service string
	var jsonOutput bool
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(service, func(_ string, store *ledger.Store) error {
				items, err := store.ListMetadata(cmd.Context())
				if err != nil {
					return err
				}
				type metadataJSON struct {
					IdentityKey string   `json:"identity_key"`
					Folder      string   `json:"folder"`
					HasPassword bool     `json:"has_password"`
					Password    string   `json:"password,omitempty"`
					Hints       []string `json:"completion_hints,omitempty"`
				}
				payload := make([]metadataJSON, 0, len(items))
				for i := range items {
					m := &items[i]
					entry := metadataJSON{
						IdentityKey: m.IdentityKey,
						Folder:      naming.FolderName(m.IdentityKey, m.DisplayTitle()),
						HasPassword: m.Password() != "",
						Hints:       m.CompletionHints(),
					}
					if showSecrets {
						entry.Password = m.Password()
					}
					payload = append(payload, entry)
				}
				if jsonOutput {
					return writeJSON(cmd, payload)
				}
				if len(payload) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No metadata recorded")
					return nil
				}
				rows := make([][]string, 0, len(payload))
				for _, p := range payload {
					password := yesNo(p.HasPassword)
					if showSecrets {
						password = p.Password
					}
					rows = append(rows, []string{p.IdentityKey, p.Folder, password, strings.Join(p.Hints, ",")})
				}
				writeTable(cmd.OutOrStdout(),
					[]string{"Key", "Folder", "Password", "Resolutions"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&service, "service", "s", "", "Service whose ledger to read")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output metadata as JSON")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print passwords instead of yes/no")
	return cmd
}
