package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"decant/internal/archive"
)

func newSniffCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "sniff FILE...",
		Short:       "Show the detected archive format and multi-part fragments of files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			type sniffJSON struct {
				Path      string   `json:"path"`
				Format    string   `json:"format"`
				Multipart bool     `json:"multipart"`
				Fragments []string `json:"fragments"`
				Size      string   `json:"size"`
			}
			results := make([]sniffJSON, 0, len(args))
			for _, path := range args {
				fragments, err := archive.CollectFragments(path)
				if err != nil {
					return err
				}
				var total uint64
				for _, f := range fragments {
					if size, err := fileSize(f); err == nil {
						total += uint64(size)
					}
				}
				results = append(results, sniffJSON{
					Path:      path,
					Format:    archive.Classify(path).String(),
					Multipart: archive.IsMultipart(path),
					Fragments: fragments,
					Size:      humanize.Bytes(total),
				})
			}

			if jsonOutput {
				return writeJSON(cmd, results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				names := make([]string, 0, len(r.Fragments))
				for _, f := range r.Fragments {
					names = append(names, filepath.Base(f))
				}
				rows = append(rows, []string{r.Path, r.Format, yesNo(r.Multipart), strings.Join(names, ", "), r.Size})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Path", "Format", "Multi-part", "Fragments", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
