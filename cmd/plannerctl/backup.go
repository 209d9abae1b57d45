package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"backlog-planner/internal/backup"
)

func exportCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection to a dated backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.BackupDir
			}
			path, err := backup.WriteFile(dir, a.backups.ExportAll(cmd.Context()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "o", "", "Output directory (default BACKUP_DIR)")

	return cmd
}

func importCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace stored collections with those in a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "%s holds: %v\nrerun with --yes to replace these collections\n", args[0], bundle.Names())
				return nil
			}

			report, err := a.backups.ImportAll(cmd.Context(), bundle)
			for _, r := range report.Results {
				if r.Err != nil {
					fmt.Fprintf(out, "%-14s failed: %v\n", r.Collection, r.Err)
					continue
				}
				fmt.Fprintf(out, "%-14s %d records\n", r.Collection, r.Restored)
			}
			for _, name := range report.Skipped {
				fmt.Fprintf(out, "%-14s skipped\n", name)
			}
			if errors.Is(err, backup.ErrPartialImport) {
				return fmt.Errorf("some collections were not restored: %w", err)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing stored data")

	return cmd
}
