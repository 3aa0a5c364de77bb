// ABOUTME: Quest templates and the per-user quest board.
// ABOUTME: Onboarding quests run once; daily quests are drawn fresh each day.
package models

import (
	"slices"

	"github.com/google/uuid"
)

// QuestType is the action that advances a quest.
type QuestType string

const (
	QuestWorkout QuestType = "workout"
	QuestGift    QuestType = "social_gift"
	QuestManual  QuestType = "manual"
)

// QuestTemplate is the catalog definition of a quest.
type QuestTemplate struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Type         QuestType `json:"type" yaml:"type"`
	Target       int       `json:"target" yaml:"target"`
	RewardPoints int       `json:"reward_points" yaml:"reward_points"`
	RewardXP     int       `json:"reward_xp" yaml:"reward_xp"`
	Icon         string    `json:"icon" yaml:"icon"`
}

// Quest is one template instance on a user's board.
type Quest struct {
	QuestTemplate `yaml:",inline"`
	TemplateID    string `json:"template_id" yaml:"template_id"`
	Progress      int    `json:"progress" yaml:"progress"`
	Completed     bool   `json:"completed" yaml:"completed"`
}

// OnboardingQuests are given to every new user once.
var OnboardingQuests = []QuestTemplate{
	{ID: "onboarding_workout", Title: "First Blood", Description: "Log your first workout session.", Type: QuestWorkout, Target: 1, RewardPoints: 50, RewardXP: 100, Icon: "⚔️"},
	{ID: "onboarding_profile", Title: "Identity", Description: "Set your display name and tribe.", Type: QuestManual, Target: 1, RewardPoints: 20, RewardXP: 50, Icon: "🆔"},
	{ID: "onboarding_social", Title: "Tribe Vibe", Description: "Check in on the tribe leaderboard.", Type: QuestManual, Target: 1, RewardPoints: 20, RewardXP: 50, Icon: "🛖"},
}

// DailyQuestTemplates is the pool daily quests are drawn from.
var DailyQuestTemplates = []QuestTemplate{
	{ID: "log_workout", Title: "Jungle Gym", Description: "Complete 1 workout session.", Type: QuestWorkout, Target: 1, RewardPoints: 10, RewardXP: 50, Icon: "🏋️"},
	{ID: "social_gift", Title: "Generous Panda", Description: "Send a gift to a tribe member.", Type: QuestGift, Target: 1, RewardPoints: 15, RewardXP: 30, Icon: "🎁"},
	{ID: "drink_water", Title: "Hydration Station", Description: "Drink 8 glasses of water.", Type: QuestManual, Target: 1, RewardPoints: 5, RewardXP: 10, Icon: "💧"},
	{ID: "eat_fruit", Title: "Nature's Candy", Description: "Eat a piece of fruit.", Type: QuestManual, Target: 1, RewardPoints: 5, RewardXP: 10, Icon: "🍎"},
	{ID: "stretch", Title: "Flexible Bamboo", Description: "Stretch for 10 minutes.", Type: QuestManual, Target: 1, RewardPoints: 5, RewardXP: 15, Icon: "🧘"},
	{ID: "walk", Title: "Morning Paws", Description: "Go for a 15 minute walk.", Type: QuestManual, Target: 1, RewardPoints: 10, RewardXP: 30, Icon: "🐾"},
	{ID: "sleep", Title: "Hibernation", Description: "Get 8 hours of sleep.", Type: QuestManual, Target: 1, RewardPoints: 10, RewardXP: 20, Icon: "💤"},
}

// DailyQuestCount is how many daily quests are drawn per day.
const DailyQuestCount = 3

// QuestBoard holds a user's onboarding quests and the current day's draw.
type QuestBoard struct {
	Day        string  `json:"day" yaml:"day"`
	Daily      []Quest `json:"daily" yaml:"daily"`
	Onboarding []Quest `json:"onboarding" yaml:"onboarding"`
}

// NewQuest instantiates a template. Onboarding quests keep the template ID
// so they stay addressable across days.
func NewQuest(t QuestTemplate, daily bool) Quest {
	q := Quest{QuestTemplate: t, TemplateID: t.ID}
	if daily {
		q.ID = uuid.New().String()
	}
	return q
}

// Advance adds amount to progress, capped at the target. Returns true when
// this call completed the quest.
func (q *Quest) Advance(amount int) bool {
	if q.Completed || amount <= 0 {
		return false
	}
	q.Progress = min(q.Progress+amount, q.Target)
	if q.Progress >= q.Target {
		q.Completed = true
		return true
	}
	return false
}

// Find returns the quest whose ID or template ID is id, or nil. Template IDs
// are unique on a board since a day never draws a template twice.
func (b *QuestBoard) Find(id string) *Quest {
	for _, list := range [][]Quest{b.Onboarding, b.Daily} {
		for i := range list {
			if list[i].ID == id || list[i].TemplateID == id {
				return &list[i]
			}
		}
	}
	return nil
}

// Open returns the number of quests not yet completed.
func (b *QuestBoard) Open() int {
	n := 0
	for _, list := range [][]Quest{b.Onboarding, b.Daily} {
		for _, q := range list {
			if !q.Completed {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy.
func (b *QuestBoard) Clone() *QuestBoard {
	c := *b
	c.Daily = slices.Clone(b.Daily)
	c.Onboarding = slices.Clone(b.Onboarding)
	return &c
}
