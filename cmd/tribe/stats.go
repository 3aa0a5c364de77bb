// ABOUTME: CLI command for tribe goals, team streak, and leaderboard.
// ABOUTME: Team counts come from the cached TeamStatsService.
package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsRefresh bool

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"team", "leaderboard"},
	Short:   "Show tribe goals and the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tribe := flagTribe
		if tribe == "" {
			tribe = cfg.DefaultProfile().Tribe
		}
		if statsRefresh {
			engine.TeamStats().Invalidate(ctx, tribe)
		}

		stats, err := engine.TeamStats().Get(ctx, tribe)
		if err != nil {
			return fmt.Errorf("failed to load team stats: %w", err)
		}
		board, err := engine.Leaderboard(ctx, tribe)
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		if tribe == "" {
			bold.Fprintln(out, "Tribe")
		} else {
			bold.Fprintf(out, "Tribe %s\n", tribe)
		}
		if stats.Degraded {
			color.New(color.FgYellow).Fprintln(out, "  (stats unavailable, showing placeholders)")
		}
		goal := func(label string, n, target int) {
			pct := 0
			if target > 0 {
				pct = n * 100 / target
			}
			fmt.Fprintf(out, "  %s %s %3d/%d\n", padRight(label, 8), progressBar(pct, 20), n, target)
		}
		goal("Week", stats.WeeklyCount, stats.WeeklyTarget)
		goal("Month", stats.MonthlyCount, stats.MonthlyTarget)
		goal("Year", stats.YearlyCount, stats.YearlyTarget)
		fmt.Fprintf(out, "  Team streak %d day(s)\n", stats.TeamStreak)

		if len(stats.UserStats) > 0 {
			fmt.Fprintln(out)
			bold.Fprintln(out, "This week")
			users := make([]string, 0, len(stats.UserStats))
			for u := range stats.UserStats {
				users = append(users, u)
			}
			sort.Slice(users, func(i, j int) bool {
				if stats.UserStats[users[i]] != stats.UserStats[users[j]] {
					return stats.UserStats[users[i]] > stats.UserStats[users[j]]
				}
				return users[i] < users[j]
			})
			for _, u := range users {
				fmt.Fprintf(out, "  %s %d\n", padRight(u, 12), stats.UserStats[u])
			}
		}

		if len(board) > 0 {
			fmt.Fprintln(out)
			bold.Fprintln(out, "Leaderboard")
			faint := color.New(color.Faint)
			for i, row := range board {
				fmt.Fprintf(out, "  %2d. %s %6d XP  L%-3d %s %s\n",
					i+1, padRight(row.User, 12), row.XP, row.Level,
					padRight(row.Rank, 9), faint.Sprintf("%d badges", row.Badges))
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsRefresh, "refresh", false, "bypass the stats cache")
	rootCmd.AddCommand(statsCmd)
}
