// ABOUTME: CLI commands for exporting and importing tribe data.
// ABOUTME: JSON round-trips through import; YAML and Markdown are for reading.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export tribe data",
	Long: `Export all workouts, reward states, ledgers, and gifts.

FORMATS:

  json       Full export (suitable for backup and 'tribe import')
  yaml       Human-readable export
  markdown   Workout tables per member (honors --tribe)

EXAMPLES:

  tribe export json -o backup.json
  tribe export yaml
  tribe export markdown --tribe crew -o workouts.md`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(cmd.Context(), repo)
		case "yaml":
			data, err = storage.ExportYAML(cmd.Context(), repo)
		case "markdown", "md":
			var md string
			md, err = storage.ExportMarkdown(cmd.Context(), repo, storage.LogFilter{TribeID: flagTribe}, engine.Location())
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tribe data from a JSON export",
	Long: `Import a JSON export into the configured backend. Records that
already exist (same ID) cause an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := storage.ImportJSON(cmd.Context(), repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Imported from %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
