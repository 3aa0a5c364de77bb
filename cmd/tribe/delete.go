// ABOUTME: CLI command for deleting workout logs.
// ABOUTME: Deletes by full ID or prefix and reverses the log's rewards.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a workout and reverse its rewards",
	Long: `Delete a workout by its ID or ID prefix.

The XP and points the workout earned are taken back, and badges that no
longer hold for the remaining history are revoked. Gift items already
received are kept.

EXAMPLES:

  tribe delete abc12345
  tribe rm abc1              # short prefix (if unique)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		l, err := repo.GetLog(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout not found: %w", err)
		}

		// The owner of the log is reverted, not the caller.
		profile := models.UserProfile{ID: l.User, DisplayName: l.User, TribeID: l.TribeID}
		if p, err := currentProfile(); err == nil && p.DisplayName == l.User {
			profile.ID = p.ID
		}

		before, err := engine.State(ctx, profile)
		if err != nil {
			return err
		}
		if err := engine.Remove(ctx, l, profile); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}
		after, err := engine.State(ctx, profile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgYellow).Fprintf(out, "✗ Deleted %s\n", l.Title())
		fmt.Fprintf(out, "  %s %s\n",
			color.New(color.Faint).Sprint(shortID(l)),
			l.Date.In(engine.Location()).Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "  %d XP  %d points\n", after.XP()-before.XP(), after.Points-before.Points)
		for _, id := range before.Badges {
			if !after.HasBadge(id) {
				if b, ok := models.BadgeByID(id); ok {
					fmt.Fprintf(out, "  revoked %s\n", b.Title)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
