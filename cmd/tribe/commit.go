// ABOUTME: CLI command for pledging a future workout.
// ABOUTME: Stores a commitment log that the next real workout fulfils.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit <when>",
	Short: "Pledge a workout",
	Long: `Pledge to work out at a given time. The pledge shows on your status
until you delete the commitment with "tribe delete". Commitments earn nothing
and never count toward streaks or goals.

EXAMPLES:

  tribe commit "2024-03-16 07:00"
  tribe commit 2024-03-16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		at, err := parseTime(args[0], engine.Location())
		if err != nil {
			return fmt.Errorf("invalid timestamp: %s", args[0])
		}
		l, err := engine.Commit(cmd.Context(), profile, at)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Pledged %s %s\n",
			at.In(engine.Location()).Format("Mon 2006-01-02 15:04"),
			color.New(color.Faint).Sprint(shortID(l)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
