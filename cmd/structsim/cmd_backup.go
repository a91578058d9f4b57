package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/structsim/internal/backup"
	"github.com/spf13/cobra"
)

func newHistoryExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the run history to a compressed archive",
		Long: `Write every recorded run, with its summaries and hypotheses, to a
checksummed gzip archive. Without --output the archive goes to
<results_dir>/backups/history-<timestamp>.bak.

Examples:
  structsim history export                      # Timestamped archive
  structsim history export --output runs.bak    # Explicit path
  structsim history export --keep 5             # Keep only the 5 newest archives
  structsim history export --max-age 30d        # Also drop archives older than 30 days`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			dir := backup.DefaultDir(settings.ResultsDir)
			if output == "" {
				output = backup.GeneratePath(dir, time.Now())
			}

			host, _ := os.Hostname()
			header, err := backup.Export(cmd.Context(), h, output, map[string]string{
				"version":  version,
				"hostname": host,
			})
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			var deleted []string
			if keep > 0 || maxAge != "" {
				policy, err := retentionPolicy(keep, maxAge)
				if err != nil {
					return err
				}
				deleted, err = backup.ApplyRetention(dir, policy)
				if err != nil {
					return fmt.Errorf("retention failed: %w", err)
				}
			}

			var size int64
			if info, err := os.Stat(output); err == nil {
				size = info.Size()
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"path":     output,
					"runs":     header.RunCount,
					"bytes":    size,
					"checksum": header.Checksum,
					"deleted":  deleted,
				})
			}

			fmt.Fprintf(out, "Exported %d run(s) to %s (%s)\n", header.RunCount, output, humanize.Bytes(uint64(size)))
			for _, d := range deleted {
				fmt.Fprintf(out, "Removed old archive %s\n", d)
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Archive path (default: <results_dir>/backups/history-<timestamp>.bak)")
	cmd.Flags().Int("keep", 0, "Keep only the N newest archives in the backup directory (0 keeps all)")
	cmd.Flags().String("max-age", "", "Remove archives older than this (e.g. 30d, 2w, 720h)")

	return cmd
}

func newHistoryImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Restore runs from an exported archive",
		Long: `Load the runs of an archive produced by 'structsim history export'.
The archive checksum is verified before anything is written. By default
runs already present are skipped; --replace clears the history first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			replace, _ := cmd.Flags().GetBool("replace")

			h, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			mode := backup.RestoreMerge
			if replace {
				mode = backup.RestoreReplace
			}
			result, err := backup.Import(cmd.Context(), h, args[0], mode)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(result)
			}
			fmt.Fprintf(out, "Restored %d run(s), skipped %d", result.Restored, result.Skipped)
			if result.Deleted > 0 {
				fmt.Fprintf(out, ", replaced %d", result.Deleted)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().Bool("replace", false, "Delete every recorded run before importing")

	return cmd
}

// retentionPolicy keeps an archive when either limit keeps it.
func retentionPolicy(keep int, maxAge string) (backup.RetentionPolicy, error) {
	var policies []backup.RetentionPolicy
	if keep > 0 {
		policies = append(policies, &backup.CountPolicy{MaxCount: keep})
	}
	if maxAge != "" {
		d, err := backup.ParseDuration(maxAge)
		if err != nil {
			return nil, err
		}
		policies = append(policies, &backup.AgePolicy{MaxAge: d})
	}
	if len(policies) == 1 {
		return policies[0], nil
	}
	return &backup.CompositePolicy{Policies: policies}, nil
}
