// ABOUTME: CLI command listing the badge catalog.
// ABOUTME: Marks badges the current user has unlocked.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var rarityColor = map[models.Rarity]*color.Color{
	models.RarityCommon:    color.New(color.FgWhite),
	models.RarityRare:      color.New(color.FgCyan),
	models.RarityLegendary: color.New(color.FgMagenta, color.Bold),
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List all badges and which you have unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		var state *models.UserGamificationState
		if profile, err := currentProfile(); err == nil {
			state, err = engine.State(cmd.Context(), profile)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		unlocked := 0
		for _, b := range models.Badges {
			mark := faint.Sprint("·")
			if state != nil && state.HasBadge(b.ID) {
				mark = color.GreenString("✓")
				unlocked++
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				mark,
				rarityColor[b.Rarity].Sprint(padRight(b.Title, 18)),
				faint.Sprint(padRight(string(b.Rarity), 10)),
				b.Description)
		}
		if state != nil {
			fmt.Fprintf(out, "\n%d/%d unlocked\n", unlocked, len(models.Badges))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(badgesCmd)
}
