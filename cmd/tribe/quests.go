// ABOUTME: CLI commands for the quest board.
// ABOUTME: Shows onboarding and daily quests and checks off manual ones.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var questsCmd = &cobra.Command{
	Use:     "quests",
	Aliases: []string{"quest"},
	Short:   "Show today's quests",
	Long: `Show your onboarding quests and today's three daily quests.

Workout quests advance when you log a workout, gift quests when you send a
gift. Everything else is checked off by hand.

EXAMPLES:

  tribe quests
  tribe quests done stretch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		board, err := engine.Quests(cmd.Context(), profile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold)
		bold.Fprintf(out, "Daily quests (%s)\n", board.Day)
		for _, q := range board.Daily {
			printQuest(out, q)
		}
		if hasOpenQuest(board.Onboarding) {
			bold.Fprintln(out, "\nGetting started")
			for _, q := range board.Onboarding {
				printQuest(out, q)
			}
		}
		fmt.Fprintf(out, "\n%d open\n", board.Open())
		return nil
	},
}

var questsDoneCmd = &cobra.Command{
	Use:   "done <quest>",
	Short: "Check off a manual quest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := currentProfile()
		if err != nil {
			return err
		}
		res, err := engine.CompleteQuest(cmd.Context(), profile, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(res.Completed) == 0 {
			fmt.Fprintf(out, "Quest %s is already complete\n", args[0])
			return nil
		}
		printCompletedQuests(out, res)
		return nil
	},
}

func hasOpenQuest(quests []models.Quest) bool {
	for _, q := range quests {
		if !q.Completed {
			return true
		}
	}
	return false
}

func printQuest(out io.Writer, q models.Quest) {
	faint := color.New(color.Faint)
	mark := " "
	if q.Completed {
		mark = color.GreenString("✓")
	}
	fmt.Fprintf(out, "%s %s %s %s %d/%d  %s\n",
		mark, q.Icon, padRight(q.Title, 18),
		progressBar(q.Progress*100/max(q.Target, 1), 10),
		q.Progress, q.Target,
		faint.Sprintf("%s · +%d XP +%d pts", q.TemplateID, q.RewardXP, q.RewardPoints))
}

func printCompletedQuests(out io.Writer, res *gamification.QuestResult) {
	if res == nil {
		return
	}
	for _, q := range res.Completed {
		color.New(color.FgCyan, color.Bold).Fprintf(out, "  🎯 Quest complete: %s (+%d XP, +%d points)\n",
			q.Title, q.RewardXP, q.RewardPoints)
	}
}

func init() {
	questsCmd.AddCommand(questsDoneCmd)
	rootCmd.AddCommand(questsCmd)
}
