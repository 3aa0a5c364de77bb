// ABOUTME: CLI command showing per-workout XP and the XP/point ledgers.
// ABOUTME: Breakdown is recomputed from history; ledgers are read as stored.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyLedger bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"xp"},
	Short:   "Show the XP each workout earned",
	Long: `Show the XP each workout earned, newest first, including the streak
bonus the workout received for the streak running at that time.

Use --ledger to show the stored XP and point ledger entries instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)

		if historyLedger {
			xp, err := repo.ListXPLogs(ctx, profile.ID, historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list XP ledger: %w", err)
			}
			points, err := repo.ListPointLogs(ctx, profile.ID, historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list point ledger: %w", err)
			}
			color.New(color.Bold).Fprintln(out, "XP")
			for _, e := range xp {
				fmt.Fprintf(out, "  %s %+5d %s %s\n",
					faint.Sprint(e.CreatedAt.In(engine.Location()).Format("2006-01-02 15:04")),
					e.Amount, padRight(string(e.Source), 8), faint.Sprint(truncate(e.SourceID, 12)))
			}
			color.New(color.Bold).Fprintln(out, "Points")
			for _, e := range points {
				fmt.Fprintf(out, "  %s %+5d %s %s %s\n",
					faint.Sprint(e.CreatedAt.In(engine.Location()).Format("2006-01-02 15:04")),
					e.Amount, padRight(string(e.Type), 7), padRight(string(e.Source), 8), faint.Sprint(truncate(e.SourceID, 12)))
			}
			return nil
		}

		rows, err := engine.Breakdown(ctx, profile)
		if err != nil {
			return fmt.Errorf("failed to compute breakdown: %w", err)
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No workouts found.")
			return nil
		}
		total := 0
		for i, r := range rows {
			total += r.Total
			if historyLimit > 0 && i >= historyLimit {
				continue
			}
			bonus := ""
			if r.Bonus > 0 {
				bonus = color.GreenString(" +%d streak (day %d)", r.Bonus, r.Streak)
			}
			fmt.Fprintf(out, "%s %s %s %4d XP%s\n",
				faint.Sprint(shortID(r.Log)),
				faint.Sprint(r.Log.Date.In(engine.Location()).Format("2006-01-02")),
				padRight(r.Log.Title(), 16),
				r.Total, bonus)
		}
		fmt.Fprintf(out, "\nTotal %d XP over %d workout(s)\n", total, len(rows))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max rows to show")
	historyCmd.Flags().BoolVar(&historyLedger, "ledger", false, "show stored ledger entries")
	rootCmd.AddCommand(historyCmd)
}
