// ABOUTME: CLI command showing a user's streak, level, points, badges, and inventory.
// ABOUTME: Reads the engine's Progress view.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var moodEmoji = map[gamification.Mood]string{
	gamification.MoodTired:  "😴",
	gamification.MoodNormal: "🙂",
	gamification.MoodFire:   "🔥",
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"me", "st"},
	Short:   "Show your streak, level, points, and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		p, err := engine.Progress(cmd.Context(), profile)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		faint := color.New(color.Faint)

		bold.Fprintf(out, "%s", profile.DisplayName)
		if profile.TribeID != "" {
			faint.Fprintf(out, " @ %s", profile.TribeID)
		}
		fmt.Fprintln(out)

		fmt.Fprintf(out, "  Level %d %s  %s %d%%\n",
			p.Level.Level, p.Rank, progressBar(p.Level.Progress, 20), p.Level.Progress)
		fmt.Fprintf(out, "  XP      %d  (%d/%d to level %d)\n",
			p.State.XP(), p.Level.CurrentXP, p.Level.NeededXP, p.Level.NextLevel)
		fmt.Fprintf(out, "  Points  %d\n", p.State.Points)
		fmt.Fprintf(out, "  Streak  %d day(s) %s  (longest %d)\n", p.Streak, moodEmoji[p.Mood], p.LongestStreak)
		if p.AtRisk {
			color.New(color.FgYellow).Fprintln(out, "  ⚠ Streak at risk: work out today to keep it")
		}
		fmt.Fprintf(out, "  Workouts %d\n", p.Workouts)
		fmt.Fprintf(out, "  Theme   %s\n", p.State.ActiveTheme)
		if p.State.ActiveCommitment != nil {
			fmt.Fprintf(out, "  Pledged %s\n", p.State.ActiveCommitment.In(engine.Location()).Format("2006-01-02 15:04"))
		}

		if len(p.State.Badges) > 0 {
			titles := make([]string, 0, len(p.State.Badges))
			for _, id := range p.State.Badges {
				if b, ok := models.BadgeByID(id); ok {
					titles = append(titles, b.Title)
				}
			}
			fmt.Fprintf(out, "  Badges  %s\n", strings.Join(titles, ", "))
		}

		if len(p.State.Inventory) > 0 {
			ids := make([]string, 0, len(p.State.Inventory))
			for id := range p.State.Inventory {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			items := make([]string, 0, len(ids))
			for _, id := range ids {
				g, _ := models.GiftByID(id)
				items = append(items, fmt.Sprintf("%s %s x%d", g.Emoji, id, p.State.Inventory[id]))
			}
			fmt.Fprintf(out, "  Items   %s\n", strings.Join(items, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
