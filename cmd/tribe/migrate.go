// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Reads the configured backend and writes everything into another one.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo          string
	migrateDataDir     string
	migratePostgresURL string
	migrateDryRun      bool
	migrateForce       bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy every workout, reward state, ledger row, and gift from the
configured backend into another backend.

The destination must be empty. Run with --dry-run first to see counts.

EXAMPLES:

  tribe migrate --to postgres --postgres-url postgres://localhost/tribe
  tribe migrate --to sqlite --data-dir ~/tribe-backup
  TRIBE_BACKEND=charm tribe migrate --to sqlite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite, postgres, or charm)")
		}
		if migrateTo == cfg.GetBackend() && migrateDataDir == "" && migratePostgresURL == "" {
			return fmt.Errorf("destination is the configured backend")
		}
		out := cmd.OutOrStdout()

		if migrateDryRun {
			data, err := storage.GetAllData(ctx, repo)
			if err != nil {
				return err
			}
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			fmt.Fprintf(out, "Would copy %d logs, %d states, %d XP rows, %d point rows, %d gifts from %s to %s\n",
				len(data.Logs), len(data.States), len(data.XPLogs), len(data.PointLogs), len(data.Gifts),
				cfg.GetBackend(), migrateTo)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		if migrateDataDir != "" {
			dstCfg.DataDir = migrateDataDir
		}
		if migratePostgresURL != "" {
			dstCfg.PostgresURL = migratePostgresURL
		}
		if migrateTo == "sqlite" && !migrateForce {
			dir := dstCfg.GetDataDir()
			if nonEmpty, err := storage.IsDirNonEmpty(dir); err != nil {
				return err
			} else if nonEmpty {
				return fmt.Errorf("destination %s is not empty (use --force to write into it)", filepath.Join(dir, "tribe.db"))
			}
		}

		dst, err := dstCfg.OpenStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Migrated %d logs, %d states, %d XP rows, %d point rows, %d gifts to %s\n",
			summary.Logs, summary.States, summary.XPLogs, summary.PointLogs, summary.Gifts, migrateTo)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite, postgres, charm)")
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "", "destination data directory for sqlite")
	migrateCmd.Flags().StringVar(&migratePostgresURL, "postgres-url", "", "destination Postgres URL")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a non-empty sqlite data directory")
	rootCmd.AddCommand(migrateCmd)
}
