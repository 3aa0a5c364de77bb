// ABOUTME: CLI command for logging workouts.
// ABOUTME: Stores the log and prints the XP, points, and badges it earned.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var (
	logDuration  int
	logCalories  int
	logVibes     int
	logActivity  string
	logAt        string
	logExercises []string
)

var logCmd = &cobra.Command{
	Use:     "log <kind>",
	Aliases: []string{"add", "a"},
	Short:   "Log a workout",
	Long: `Log a workout and collect its rewards.

KINDS:

  A        Plan A session
  B        Plan B session
  custom   Anything else (use --activity to name it)

Sessions under 30 minutes are recorded but do not extend your streak.

EXAMPLES:

  tribe log A --duration 45
  tribe log B -d 50 --at "2024-03-14 18:30"
  tribe log custom --activity Rowing -d 40 --calories 380
  tribe log A -d 60 -e "Squat:100x5,100x5,100x5" -e "Bench:80x8"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseWorkoutKind(args[0])
		if err != nil {
			return err
		}
		if kind == models.KindCommitment {
			return fmt.Errorf("use 'tribe commit' to pledge a workout")
		}
		if logDuration < 0 {
			return fmt.Errorf("duration must not be negative")
		}
		profile, err := currentProfile()
		if err != nil {
			return err
		}

		l := models.NewWorkoutLog(profile.DisplayName, kind).
			WithTribe(profile.TribeID).
			WithDuration(logDuration)
		if logCalories > 0 {
			l.WithCalories(logCalories)
		}
		if logVibes > 0 {
			l.WithVibes(logVibes)
		}
		if logActivity != "" {
			l.WithActivity(logActivity)
		}
		if logAt != "" {
			t, err := parseTime(logAt, engine.Location())
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", logAt)
			}
			l.WithDate(t)
		}
		for _, raw := range logExercises {
			ex, err := parseExercise(raw)
			if err != nil {
				return err
			}
			l.WithExercise(ex)
		}

		ctx := cmd.Context()
		before, err := engine.State(ctx, profile)
		if err != nil {
			return err
		}
		res, err := engine.LogWorkout(ctx, l, profile)
		if err != nil {
			return fmt.Errorf("failed to log workout: %w", err)
		}
		after, err := engine.State(ctx, profile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		color.New(color.FgGreen).Fprintf(out, "✓ Logged %s\n", l.Title())
		fmt.Fprintf(out, "  %s %s  %d min\n",
			faint.Sprint(shortID(l)),
			faint.Sprint(l.Date.In(engine.Location()).Format("2006-01-02 15:04")),
			l.DurationMinutes)
		fmt.Fprintf(out, "  +%d XP  +%d points\n",
			after.XP()-before.XP()-res.Quests.XP,
			after.Points-before.Points-res.Quests.Points)
		if !l.IsStreakEligible() {
			color.New(color.FgYellow).Fprintf(out, "  Under %d minutes: does not count toward your streak\n", models.MinStreakMinutes)
		}
		for _, b := range res.Badges {
			color.New(color.FgMagenta, color.Bold).Fprintf(out, "  🏅 %s unlocked: %s\n", b.Title, b.Description)
		}
		printCompletedQuests(out, res.Quests)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logDuration, "duration", "d", 0, "duration in minutes")
	logCmd.Flags().IntVar(&logCalories, "calories", 0, "calories burned")
	logCmd.Flags().IntVar(&logVibes, "vibes", 0, "how it felt (1-5)")
	logCmd.Flags().StringVar(&logActivity, "activity", "", "activity name for custom workouts")
	logCmd.Flags().StringVar(&logAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	logCmd.Flags().StringArrayVarP(&logExercises, "exercise", "e", nil, "exercise as Name:WEIGHTxREPS,... (repeatable)")
	rootCmd.AddCommand(logCmd)
}
