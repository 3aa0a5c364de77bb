// ABOUTME: Root Cobra command for tribe CLI.
// ABOUTME: Loads config and opens storage, cache, and engine via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/tribe/internal/config"
	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	repo       storage.Repository
	engine     *gamification.Engine
	logger     *log.Logger
	closeCache func() error

	flagUser    string
	flagUserID  string
	flagTribe   string
	flagVerbose bool
)

// commands that never touch storage
var noStorage = map[string]bool{
	"help":          true,
	"version":       true,
	"install-skill": true,
	"completion":    true,
	"unlink":        true,
	"repair":        true,
	"reset":         true,
	"wipe":          true,
}

var rootCmd = &cobra.Command{
	Use:   "tribe",
	Short: "Gamified workout tracker for you and your tribe",
	Long: `Tribe logs workouts and turns them into streaks, XP, points, badges,
and tribe-wide goals.

QUICK START:

  $ tribe log A --duration 45                 # Log a Plan A session
  $ tribe log custom --activity Rowing -d 40  # Log a custom workout
  $ tribe status                              # Streak, level, points, badges
  $ tribe stats                               # Tribe goals and leaderboard
  $ tribe delete abc123                       # Delete and reverse rewards

REWARDS:

  Plan A / Plan B   100 XP, 10 points
  Custom            1 XP per minute (max 60), 1 point per 10 minutes from 30 minutes
  Streak            +10 XP per streak day after the first (max +50)
  Badges   +50 XP / +50 points and a random gift item
  Quests   the reward shown on each quest

SHOP, GIFTS, AND QUESTS:

  $ tribe quests                      # Onboarding and daily quests
  $ tribe quests done drink_water     # Check off a manual quest
  $ tribe shop list                   # Themes and prices
  $ tribe shop buy deep_forest        # Spend points on a theme
  $ tribe gift bob protein            # Give a held item to a tribe mate
  $ tribe commit "2024-03-16 07:00"   # Pledge a workout

IDENTITY:

  --user, --user-id, and --tribe default to the "profile" section of
  ~/.config/tribe/config.json.

STORAGE:

  sqlite (default), postgres, or charm, chosen by "backend" in the config
  or TRIBE_BACKEND. Team stats are cached in memory, and in Redis when
  "redis_addr" is set.

MCP INTEGRATION:

  Run 'tribe mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "tribe": { "command": "tribe", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = closeAll()
		logger = newLogger()
		if noStorage[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return openEngine(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "tribe", Level: log.WarnLevel})
	if flagVerbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// openEngine wires storage, cache, and the engine from cfg.
func openEngine(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo, err = cfg.OpenStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	c, closeFn, err := cfg.OpenCache(ctx, logger)
	if err != nil {
		logger.Warn("cache unavailable, using memory only", "err", err)
		c, closeFn, _ = (&config.Config{CacheTTL: cfg.CacheTTL}).OpenCache(ctx, logger)
	}
	closeCache = closeFn

	defaults, perTribe := cfg.TeamTargets()
	stats := gamification.NewTeamStatsService(repo,
		gamification.WithStatsCache(c),
		gamification.WithTargets(defaults, perTribe),
		gamification.WithStatsLocation(loc),
		gamification.WithStatsLogger(logger),
	)
	engine = gamification.NewEngine(repo,
		gamification.WithLocation(loc),
		gamification.WithLogger(logger),
		gamification.WithTeamStats(stats),
	)
	return nil
}

func closeAll() error {
	var err error
	if closeCache != nil {
		if cerr := closeCache(); cerr != nil {
			logger.Warn("cache close failed", "err", cerr)
		}
		closeCache = nil
	}
	if repo != nil {
		err = repo.Close()
		repo = nil
	}
	engine = nil
	return err
}

// currentProfile resolves flags against the configured profile.
func currentProfile() (models.UserProfile, error) {
	p := cfg.DefaultProfile()
	if flagUser != "" {
		p.User = flagUser
		if flagUserID == "" {
			p.UserID = ""
		}
	}
	if flagUserID != "" {
		p.UserID = flagUserID
	}
	if flagTribe != "" {
		p.Tribe = flagTribe
	}
	if p.User == "" {
		return models.UserProfile{}, fmt.Errorf("no user set: pass --user or set profile.user in %s", config.GetConfigPath())
	}
	if p.UserID == "" {
		p.UserID = p.User
	}
	return models.UserProfile{ID: p.UserID, DisplayName: p.User, TribeID: p.Tribe}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user display name (default: profile.user)")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user-id", "", "stable user ID for ledgers (default: the user name)")
	rootCmd.PersistentFlags().StringVar(&flagTribe, "tribe", "", "tribe ID (default: profile.tribe)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}
