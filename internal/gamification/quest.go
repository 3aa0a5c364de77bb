// ABOUTME: Quest board upkeep: daily draws, progress from actions, completion rewards.
// ABOUTME: Quest rewards land in the ledgers as "quest" and are not undone by log deletion.
package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/tribe/internal/metrics"
	"github.com/harperreed/tribe/internal/models"
)

// Ledger source IDs for quest rewards.
const (
	questSourceDaily      = "daily"
	questSourceOnboarding = "onboarding"
)

// QuestResult reports the quests one action finished and what they paid.
type QuestResult struct {
	Completed []models.Quest `json:"completed"`
	Points    int            `json:"points"`
	XP        int            `json:"xp"`
}

// LogResult is the outcome of logging a workout end to end.
type LogResult struct {
	Badges []models.Badge `json:"badges"`
	Quests *QuestResult   `json:"quests"`
}

// Quests returns the user's board for today, drawing new daily quests when
// the day has rolled over.
func (e *Engine) Quests(ctx context.Context, profile models.UserProfile) (*models.QuestBoard, error) {
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	if e.refreshQuests(state) {
		if err := e.saveState(ctx, profile, state); err != nil {
			return nil, err
		}
	}
	return state.Quests.Clone(), nil
}

// AdvanceQuests moves every open quest of the given type forward by amount.
// Manual quests only move through CompleteQuest.
func (e *Engine) AdvanceQuests(ctx context.Context, profile models.UserProfile, typ models.QuestType, amount int) (*QuestResult, error) {
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	e.refreshQuests(state)
	res := e.advanceQuests(ctx, profile, state, amount, func(q *models.Quest) bool {
		return typ != models.QuestManual && q.Type == typ
	})
	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	return res, nil
}

// CompleteQuest checks off a manual quest by ID or template ID. Completing a
// finished quest is a no-op.
func (e *Engine) CompleteQuest(ctx context.Context, profile models.UserProfile, questID string) (*QuestResult, error) {
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	e.refreshQuests(state)
	q := state.Quests.Find(questID)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	if q.Type != models.QuestManual {
		return nil, fmt.Errorf("%w: %s", ErrQuestNotManual, questID)
	}
	id := q.ID
	res := e.advanceQuests(ctx, profile, state, q.Target, func(c *models.Quest) bool { return c.ID == id })
	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	return res, nil
}

// LogWorkout stores a log, awards it, and then counts it toward workout
// quests. Commitments only go through the first two steps.
func (e *Engine) LogWorkout(ctx context.Context, l *models.WorkoutLog, profile models.UserProfile) (*LogResult, error) {
	badges, err := e.Record(ctx, l, profile)
	if err != nil {
		return nil, err
	}
	out := &LogResult{Badges: badges, Quests: &QuestResult{}}
	if l.IsCommitment() {
		return out, nil
	}
	if out.Quests, err = e.AdvanceQuests(ctx, profile, models.QuestWorkout, 1); err != nil {
		return nil, fmt.Errorf("advance quests: %w", err)
	}
	return out, nil
}

// refreshQuests seeds onboarding quests and redraws the daily set on a new
// calendar day. Returns true if the board changed.
func (e *Engine) refreshQuests(state *models.UserGamificationState) bool {
	changed := false
	if state.Quests == nil {
		state.Quests = &models.QuestBoard{}
		changed = true
	}
	b := state.Quests
	if len(b.Onboarding) == 0 {
		for _, t := range models.OnboardingQuests {
			b.Onboarding = append(b.Onboarding, models.NewQuest(t, false))
		}
		changed = true
	}
	if day := e.now().In(e.loc).Format(time.DateOnly); b.Day != day {
		b.Day = day
		b.Daily = e.drawDailyQuests()
		changed = true
	}
	return changed
}

func (e *Engine) drawDailyQuests() []models.Quest {
	e.rngMu.Lock()
	order := e.rng.Perm(len(models.DailyQuestTemplates))
	e.rngMu.Unlock()

	n := min(models.DailyQuestCount, len(order))
	out := make([]models.Quest, 0, n)
	for _, i := range order[:n] {
		out = append(out, models.NewQuest(models.DailyQuestTemplates[i], true))
	}
	return out
}

func (e *Engine) advanceQuests(ctx context.Context, profile models.UserProfile, state *models.UserGamificationState, amount int, match func(q *models.Quest) bool) *QuestResult {
	res := &QuestResult{Completed: []models.Quest{}}
	lists := []struct {
		quests []models.Quest
		source string
	}{
		{state.Quests.Onboarding, questSourceOnboarding},
		{state.Quests.Daily, questSourceDaily},
	}
	for _, list := range lists {
		for i := range list.quests {
			q := &list.quests[i]
			if !match(q) || !q.Advance(amount) {
				continue
			}
			state.AddPoints(q.RewardPoints)
			state.AddXP(q.RewardXP)
			e.appendPoints(ctx, profile, q.RewardPoints, models.PointsEarned, models.SourceQuest, list.source)
			e.appendXP(ctx, profile, q.RewardXP, models.SourceQuest, list.source)
			metrics.QuestsCompleted.WithLabelValues(list.source).Inc()
			metrics.XPAwarded.Add(float64(q.RewardXP))

			res.Completed = append(res.Completed, *q)
			res.Points += q.RewardPoints
			res.XP += q.RewardXP
		}
	}
	return res
}
