// ABOUTME: CLI command for listing workout logs.
// ABOUTME: Filters by kind, user, or whole tribe and limits results.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listKind  string
	listLimit int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List workouts",
	Long: `List recent workouts, newest first.

OUTPUT FORMAT:

  ID  DATE  USER  KIND  MINUTES  (ACTIVITY)

  The ID is an 8-character prefix you can use with delete.

EXAMPLES:

  tribe list                 # your last 20 workouts
  tribe list --all           # everyone in your tribe
  tribe list -k custom -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := storage.LogFilter{TribeID: flagTribe, Limit: listLimit}
		if p, err := currentProfile(); err == nil {
			f.TribeID = p.TribeID
			if !listAll {
				f.User = p.DisplayName
			}
		} else if !listAll {
			return err
		}
		if listKind != "" {
			kind, err := models.ParseWorkoutKind(listKind)
			if err != nil {
				return err
			}
			f.Kind = &kind
		}

		logs, err := repo.ListLogs(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(logs) == 0 {
			fmt.Fprintln(out, "No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, l := range logs {
			extra := ""
			if l.CustomActivity != "" {
				extra = faint.Sprintf(" (%s)", truncate(l.CustomActivity, 30))
			}
			fmt.Fprintf(out, "%s %s %s %s %3d min%s\n",
				faint.Sprint(shortID(l)),
				faint.Sprint(l.Date.In(engine.Location()).Format("2006-01-02 15:04")),
				padRight(l.User, 12),
				padRight(l.Kind.Label(), 11),
				l.DurationMinutes,
				extra)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "filter by kind (A, B, custom, commitment)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	listCmd.Flags().BoolVar(&listAll, "all", false, "list the whole tribe")
	rootCmd.AddCommand(listCmd)
}
