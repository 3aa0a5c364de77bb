// ABOUTME: Static, versioned catalogs for badges, gift items, and shop themes.
// ABOUTME: Reference data only; never fetched or mutated at runtime.
package models

// CatalogVersion changes whenever a catalog entry is added or altered.
const CatalogVersion = 4

// Rarity grades a badge.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Badge IDs.
const (
	BadgeFirstStep       = "first_step"
	BadgeWeekWarrior     = "week_warrior"
	BadgeEarlyBird       = "early_bird"
	BadgeNightOwl        = "night_owl"
	BadgeLunchBreak      = "lunch_break"
	BadgeStreak5         = "streak_5"
	BadgeStreak10        = "streak_10"
	BadgeCenturyClub     = "century_club"
	BadgeHeavyLifter     = "heavy_lifter"
	BadgeWeekendWarrior  = "weekend_warrior"
	BadgeTeamPlayer      = "team_player"
	BadgeGoalCrusher     = "goal_crusher"
	BadgeCalorieCrusher  = "calorie_crusher"
	BadgeLongHaul        = "long_haul"
	BadgeSocialButterfly = "social_butterfly"
	BadgeConsistencyKing = "consistency_king"
)

// Badge is a one-time unlockable achievement.
type Badge struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
	Rarity      Rarity `json:"rarity" yaml:"rarity"`
}

// Badges is the full badge catalog.
var Badges = []Badge{
	{ID: BadgeFirstStep, Title: "First Step", Description: "Log your very first workout.", Icon: "Footprints", Rarity: RarityCommon},
	{ID: BadgeWeekWarrior, Title: "Week Warrior", Description: "Log 3 workouts within 7 days.", Icon: "Sword", Rarity: RarityCommon},
	{ID: BadgeEarlyBird, Title: "Early Bird", Description: "Work out before 8 AM.", Icon: "Sun", Rarity: RarityRare},
	{ID: BadgeNightOwl, Title: "Night Owl", Description: "Work out after 8 PM.", Icon: "Moon", Rarity: RarityRare},
	{ID: BadgeLunchBreak, Title: "Lunch Break", Description: "Squeeze in a workout between 11 AM and 1 PM.", Icon: "Sun", Rarity: RarityCommon},
	{ID: BadgeStreak5, Title: "High Five", Description: "Reach a 5-day streak.", Icon: "Flame", Rarity: RarityRare},
	{ID: BadgeStreak10, Title: "Unstoppable", Description: "Reach a 10-day streak.", Icon: "Zap", Rarity: RarityLegendary},
	{ID: BadgeCenturyClub, Title: "Century Club", Description: "Lift 1,000 kg of total volume in one session.", Icon: "Dumbbell", Rarity: RarityLegendary},
	{ID: BadgeHeavyLifter, Title: "Heavy Lifter", Description: "Lift 5,000 kg of total volume in one session.", Icon: "Dumbbell", Rarity: RarityLegendary},
	{ID: BadgeWeekendWarrior, Title: "Weekend Hero", Description: "Work out on a Saturday or Sunday.", Icon: "Coffee", Rarity: RarityCommon},
	{ID: BadgeTeamPlayer, Title: "Team Player", Description: "Contribute to the weekly tribe goal.", Icon: "Users", Rarity: RarityCommon},
	{ID: BadgeGoalCrusher, Title: "Goal Crusher", Description: "Hit the monthly tribe goal.", Icon: "Target", Rarity: RarityRare},
	{ID: BadgeCalorieCrusher, Title: "Calorie Crusher", Description: "Burn 500+ calories in one session.", Icon: "Flame", Rarity: RarityRare},
	{ID: BadgeLongHaul, Title: "Long Haul", Description: "Work out for 90 minutes or more.", Icon: "Clock", Rarity: RarityLegendary},
	{ID: BadgeSocialButterfly, Title: "Social Butterfly", Description: "Send 5 nudges to your tribe.", Icon: "MessageCircle", Rarity: RarityCommon},
	{ID: BadgeConsistencyKing, Title: "Consistency King", Description: "Hit 3 workouts a week for 4 weeks.", Icon: "Crown", Rarity: RarityLegendary},
}

// BadgeByID looks up a badge in the catalog.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// GiftItem is a collectible granted on badge unlock and sendable to tribe mates.
type GiftItem struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Emoji string `json:"emoji" yaml:"emoji"`
}

// GiftItems is the fixed gift catalog.
var GiftItems = []GiftItem{
	{ID: "fist_bump", Name: "Fist Bump", Emoji: "👊"},
	{ID: "protein", Name: "Protein Shake", Emoji: "🥤"},
	{ID: "fire", Name: "Motivation Fire", Emoji: "🔥"},
	{ID: "medal", Name: "Tiny Medal", Emoji: "🏅"},
}

// GiftByID looks up a gift item in the catalog.
func GiftByID(id string) (GiftItem, bool) {
	for _, g := range GiftItems {
		if g.ID == id {
			return g, true
		}
	}
	return GiftItem{}, false
}

// Theme is a cosmetic purchasable with points.
type Theme struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       int    `json:"price" yaml:"price"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Themes is the shop catalog.
var Themes = []Theme{
	{ID: DefaultTheme, Name: "Classic", Price: 0},
	{ID: "jungle_night", Name: "Jungle Night", Price: 500, Description: "Train under the moon"},
	{ID: "volcano", Name: "Volcano Core", Price: 1000, Description: "Things are heating up!"},
	{ID: "deep_forest", Name: "Deep Forest", Price: 200, Description: "Enter the mystical jungle"},
}

// ThemeByID looks up a theme in the catalog.
func ThemeByID(id string) (Theme, bool) {
	for _, t := range Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}
