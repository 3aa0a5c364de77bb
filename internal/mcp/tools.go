// ABOUTME: MCP tool implementations for tribe.
// ABOUTME: Workouts, progress, team stats, shop, gifts, and quests.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tribe/internal/gamification"
	"github.com/harperreed/tribe/internal/models"
	"github.com/harperreed/tribe/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_workout",
		Description: "Log a workout (Plan A, Plan B, or Custom) and award XP, points, and badges",
	}, s.handleLogWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout by ID or ID prefix and reverse its rewards",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, optionally filtered by user, tribe, or kind",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_progress",
		Description: "Get a user's points, XP, level, rank, streak, mood, and badges",
	}, s.handleGetProgress)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "team_stats",
		Description: "Get weekly, monthly, and yearly team counts against goals plus the team streak",
	}, s.handleTeamStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "xp_breakdown",
		Description: "Show the XP each workout earned, including streak bonus",
	}, s.handleXPBreakdown)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "purchase_theme",
		Description: "Buy a theme with points (or equip it if already owned)",
	}, s.handlePurchaseTheme)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_gift",
		Description: "Give a held gift item to another tribe member",
	}, s.handleSendGift)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_quests",
		Description: "Show a user's onboarding quests and today's daily quests with progress",
	}, s.handleListQuests)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_quest",
		Description: "Check off a manual quest by ID or template ID and collect its reward",
	}, s.handleCompleteQuest)
}

// Tool input/output types

type setInput struct {
	Weight    float64 `json:"weight" jsonschema:"Weight in kg"`
	Reps      int     `json:"reps" jsonschema:"Repetitions"`
	Completed bool    `json:"completed,omitempty" jsonschema:"Whether the set was completed"`
}

type exerciseInput struct {
	Name string     `json:"name" jsonschema:"Exercise name"`
	Sets []setInput `json:"sets,omitempty" jsonschema:"Sets performed"`
}

type logWorkoutInput struct {
	Kind            string          `json:"kind" jsonschema:"Workout kind: A, B, or custom"`
	DurationMinutes int             `json:"duration_minutes,omitempty" jsonschema:"Duration in minutes"`
	Calories        int             `json:"calories,omitempty" jsonschema:"Calories burned"`
	Vibes           int             `json:"vibes,omitempty" jsonschema:"How it felt, 1-5"`
	Activity        string          `json:"activity,omitempty" jsonschema:"Activity name for custom workouts"`
	Date            string          `json:"date,omitempty" jsonschema:"When it happened (RFC 3339 or 2006-01-02 15:04), defaults to now"`
	Exercises       []exerciseInput `json:"exercises,omitempty" jsonschema:"Exercises with sets, used for volume badges"`
	User            string          `json:"user,omitempty" jsonschema:"User name, defaults to the configured user"`
	Tribe           string          `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type logWorkoutOutput struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Badges  []string `json:"badges"`
	Quests  []string `json:"quests"`
	QuestXP int      `json:"quest_xp"`
	Points  int      `json:"points"`
	XP      int      `json:"xp"`
	Message string   `json:"message"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Workout ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listWorkoutsInput struct {
	User  string `json:"user,omitempty" jsonschema:"Filter by user"`
	Tribe string `json:"tribe,omitempty" jsonschema:"Filter by tribe"`
	Kind  string `json:"kind,omitempty" jsonschema:"Filter by kind (A, B, custom, commitment)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listWorkoutsOutput struct {
	Workouts []*models.WorkoutLog `json:"workouts"`
	Message  string               `json:"message,omitempty"`
}

type userInput struct {
	User  string `json:"user,omitempty" jsonschema:"User name, defaults to the configured user"`
	Tribe string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type tribeInput struct {
	Tribe string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type breakdownInput struct {
	User  string `json:"user,omitempty" jsonschema:"User name, defaults to the configured user"`
	Tribe string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max workouts (default 20)"`
}

type breakdownOutput struct {
	Workouts []gamification.LogBreakdown `json:"workouts"`
	TotalXP  int                         `json:"total_xp"`
}

type themeInput struct {
	ThemeID string `json:"theme_id" jsonschema:"Theme to buy"`
	User    string `json:"user,omitempty" jsonschema:"User name, defaults to the configured user"`
	Tribe   string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type themeOutput struct {
	Theme   string `json:"theme"`
	Points  int    `json:"points"`
	Message string `json:"message"`
}

type giftInput struct {
	To     string `json:"to" jsonschema:"Recipient user name"`
	GiftID string `json:"gift_id" jsonschema:"Gift item to send"`
	User   string `json:"user,omitempty" jsonschema:"Sender, defaults to the configured user"`
	Tribe  string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type questInput struct {
	QuestID string `json:"quest_id" jsonschema:"Quest ID or template ID, e.g. drink_water"`
	User    string `json:"user,omitempty" jsonschema:"User name, defaults to the configured user"`
	Tribe   string `json:"tribe,omitempty" jsonschema:"Tribe ID, defaults to the configured tribe"`
}

type questsOutput struct {
	Day        string         `json:"day"`
	Daily      []models.Quest `json:"daily"`
	Onboarding []models.Quest `json:"onboarding"`
	Open       int            `json:"open"`
}

type questResultOutput struct {
	Completed []string `json:"completed"`
	Points    int      `json:"points"`
	XP        int      `json:"xp"`
	Message   string   `json:"message"`
}

func questTitles(res *gamification.QuestResult) []string {
	titles := make([]string, 0, len(res.Completed))
	for _, q := range res.Completed {
		titles = append(titles, q.Title)
	}
	return titles
}

// parseWhen accepts RFC 3339 or a local "2006-01-02 15:04" timestamp.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

func shortID(l *models.WorkoutLog) string {
	return l.ID.String()[:8]
}

// Tool handlers

func (s *Server) handleLogWorkout(ctx context.Context, req *mcp.CallToolRequest, input logWorkoutInput) (*mcp.CallToolResult, logWorkoutOutput, error) {
	kind, err := models.ParseWorkoutKind(input.Kind)
	if err != nil {
		return nil, logWorkoutOutput{}, err
	}
	if kind == models.KindCommitment {
		return nil, logWorkoutOutput{}, fmt.Errorf("commitments are made with the commit command, not logged")
	}

	profile := s.profileFor(input.User, input.Tribe)
	l := models.NewWorkoutLog(profile.DisplayName, kind).WithTribe(profile.TribeID)
	if input.DurationMinutes > 0 {
		l.WithDuration(input.DurationMinutes)
	}
	if input.Calories > 0 {
		l.WithCalories(input.Calories)
	}
	if input.Vibes > 0 {
		l.WithVibes(input.Vibes)
	}
	if input.Activity != "" {
		l.WithActivity(input.Activity)
	}
	if input.Date != "" {
		t, err := parseWhen(input.Date, s.engine.Location())
		if err != nil {
			return nil, logWorkoutOutput{}, fmt.Errorf("invalid date %q: %w", input.Date, err)
		}
		l.WithDate(t)
	}
	for _, e := range input.Exercises {
		ex := models.Exercise{Name: e.Name}
		for _, set := range e.Sets {
			ex.Sets = append(ex.Sets, models.Set{Weight: set.Weight, Reps: set.Reps, Completed: set.Completed})
		}
		l.WithExercise(ex)
	}

	res, err := s.engine.LogWorkout(ctx, l, profile)
	if err != nil {
		return nil, logWorkoutOutput{}, fmt.Errorf("failed to log workout: %w", err)
	}
	state, err := s.engine.State(ctx, profile)
	if err != nil {
		return nil, logWorkoutOutput{}, err
	}

	badges := make([]string, 0, len(res.Badges))
	for _, b := range res.Badges {
		badges = append(badges, b.Title)
	}
	quests := questTitles(res.Quests)
	msg := fmt.Sprintf("Logged %s for %s (ID: %s)", l.Title(), profile.DisplayName, shortID(l))
	if len(badges) > 0 {
		msg += "; unlocked " + strings.Join(badges, ", ")
	}
	if len(quests) > 0 {
		msg += "; completed " + strings.Join(quests, ", ")
	}
	return nil, logWorkoutOutput{
		ID:      shortID(l),
		Kind:    l.Kind.Label(),
		Badges:  badges,
		Quests:  quests,
		QuestXP: res.Quests.XP,
		Points:  state.Points,
		XP:      state.XP(),
		Message: msg,
	}, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	l, err := s.repo.GetLog(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("workout not found: %s", input.ID)
	}
	if err := s.engine.Remove(ctx, l, s.profileFor(l.User, l.TribeID)); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s workout: %s", l.Title(), shortID(l)),
	}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	f := storage.LogFilter{User: input.User, TribeID: input.Tribe, Limit: input.Limit}
	if input.Kind != "" {
		kind, err := models.ParseWorkoutKind(input.Kind)
		if err != nil {
			return nil, nil, err
		}
		f.Kind = &kind
	}

	logs, err := s.repo.ListLogs(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	out := listWorkoutsOutput{Workouts: logs}
	if len(logs) == 0 {
		out.Workouts = []*models.WorkoutLog{}
		out.Message = "No workouts found."
	}
	return nil, out, nil
}

func (s *Server) handleGetProgress(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, any, error) {
	p, err := s.engine.Progress(ctx, s.profileFor(input.User, input.Tribe))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return nil, p, nil
}

func (s *Server) handleTeamStats(ctx context.Context, req *mcp.CallToolRequest, input tribeInput) (*mcp.CallToolResult, models.TeamStats, error) {
	tribe := input.Tribe
	if tribe == "" {
		tribe = s.profile.TribeID
	}
	stats, err := s.engine.TeamStats().Get(ctx, tribe)
	if err != nil {
		return nil, models.TeamStats{}, fmt.Errorf("failed to load team stats: %w", err)
	}
	return nil, *stats, nil
}

func (s *Server) handleXPBreakdown(ctx context.Context, req *mcp.CallToolRequest, input breakdownInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	rows, err := s.engine.Breakdown(ctx, s.profileFor(input.User, input.Tribe))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute breakdown: %w", err)
	}
	out := breakdownOutput{Workouts: []gamification.LogBreakdown{}}
	for i, r := range rows {
		out.TotalXP += r.Total
		if i < input.Limit {
			out.Workouts = append(out.Workouts, r)
		}
	}
	return nil, out, nil
}

func (s *Server) handlePurchaseTheme(ctx context.Context, req *mcp.CallToolRequest, input themeInput) (*mcp.CallToolResult, themeOutput, error) {
	state, err := s.engine.PurchaseTheme(ctx, s.profileFor(input.User, input.Tribe), input.ThemeID)
	if err != nil {
		return nil, themeOutput{}, err
	}
	return nil, themeOutput{
		Theme:   state.ActiveTheme,
		Points:  state.Points,
		Message: fmt.Sprintf("Equipped %s (%d points left)", input.ThemeID, state.Points),
	}, nil
}

func (s *Server) handleSendGift(ctx context.Context, req *mcp.CallToolRequest, input giftInput) (*mcp.CallToolResult, simpleOutput, error) {
	tx, err := s.engine.SendGift(ctx, s.profileFor(input.User, input.Tribe), input.To, input.GiftID)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	gift, _ := models.GiftByID(tx.GiftID)
	return nil, simpleOutput{
		Message: fmt.Sprintf("Sent %s %s to %s", gift.Emoji, gift.Name, tx.To),
	}, nil
}

func (s *Server) handleListQuests(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, questsOutput, error) {
	board, err := s.engine.Quests(ctx, s.profileFor(input.User, input.Tribe))
	if err != nil {
		return nil, questsOutput{}, err
	}
	return nil, questsOutput{
		Day:        board.Day,
		Daily:      board.Daily,
		Onboarding: board.Onboarding,
		Open:       board.Open(),
	}, nil
}

func (s *Server) handleCompleteQuest(ctx context.Context, req *mcp.CallToolRequest, input questInput) (*mcp.CallToolResult, questResultOutput, error) {
	res, err := s.engine.CompleteQuest(ctx, s.profileFor(input.User, input.Tribe), input.QuestID)
	if err != nil {
		return nil, questResultOutput{}, err
	}
	out := questResultOutput{Completed: questTitles(res), Points: res.Points, XP: res.XP}
	if len(out.Completed) == 0 {
		out.Message = fmt.Sprintf("Quest %s is already complete", input.QuestID)
	} else {
		out.Message = fmt.Sprintf("Completed %s (+%d XP, +%d points)", strings.Join(out.Completed, ", "), res.XP, res.Points)
	}
	return nil, out, nil
}
