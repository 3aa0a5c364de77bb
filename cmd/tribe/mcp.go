// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the configured storage and engine.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/tribe/internal/mcp"
	"github.com/harperreed/tribe/internal/models"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.
The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "tribe": {
        "command": "tribe",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_workout      Log a workout and award XP, points, and badges
  delete_workout   Delete a workout and reverse its rewards
  list_workouts    List recent workouts
  get_progress     Streak, level, points, and badges
  team_stats       Tribe goals and team streak
  xp_breakdown     XP per workout including streak bonus
  purchase_theme   Buy or equip a theme
  send_gift        Give a gift item to a tribe mate
  list_quests      Show onboarding and daily quests
  complete_quest   Check off a manual quest

AVAILABLE RESOURCES:

  tribe://badges        Badge catalog with unlock status
  tribe://leaderboard   Tribe members ranked by XP`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Tools fall back to this profile; a missing user is allowed here.
		profile, err := currentProfile()
		if err != nil {
			profile = models.UserProfile{TribeID: flagTribe}
		}
		server, err := mcp.NewServer(repo, engine, profile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
