// ABOUTME: Per-user gamification state and team aggregate models.
// ABOUTME: State holds badges, inventory, points, XP, themes, commitment, and quests.
package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultTheme is always unlocked and active for new users.
const DefaultTheme = "default"

// legacyCommitmentPrefix marks commitment timestamps that older clients stored
// inside the badge list. Only decoded, never written.
const legacyCommitmentPrefix = "committed_"

// UserProfile identifies the user a state belongs to.
type UserProfile struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	TribeID     string `json:"tribe_id,omitempty" yaml:"tribe_id,omitempty"`
}

// UserGamificationState is the persisted reward state of one user.
type UserGamificationState struct {
	Badges           []string       `json:"badges" yaml:"badges"`
	Inventory        map[string]int `json:"inventory" yaml:"inventory"`
	Points           int            `json:"points" yaml:"points"`
	LifetimeXP       *int           `json:"lifetime_xp,omitempty" yaml:"lifetime_xp,omitempty"`
	ActiveTheme      string         `json:"active_theme" yaml:"active_theme"`
	UnlockedThemes   []string       `json:"unlocked_themes" yaml:"unlocked_themes"`
	ActiveCommitment *time.Time     `json:"active_commitment,omitempty" yaml:"active_commitment,omitempty"`
	Quests           *QuestBoard    `json:"quests,omitempty" yaml:"quests,omitempty"`
}

// NewGamificationState returns the zero-valued default state.
func NewGamificationState() *UserGamificationState {
	xp := 0
	return &UserGamificationState{
		Badges:         []string{},
		Inventory:      map[string]int{},
		LifetimeXP:     &xp,
		ActiveTheme:    DefaultTheme,
		UnlockedThemes: []string{DefaultTheme},
	}
}

// Clone returns a deep copy, so callers can mutate a working copy.
func (s *UserGamificationState) Clone() *UserGamificationState {
	c := *s
	c.Badges = slices.Clone(s.Badges)
	c.UnlockedThemes = slices.Clone(s.UnlockedThemes)
	c.Inventory = make(map[string]int, len(s.Inventory))
	for k, v := range s.Inventory {
		c.Inventory[k] = v
	}
	if s.LifetimeXP != nil {
		xp := *s.LifetimeXP
		c.LifetimeXP = &xp
	}
	if s.ActiveCommitment != nil {
		t := *s.ActiveCommitment
		c.ActiveCommitment = &t
	}
	if s.Quests != nil {
		c.Quests = s.Quests.Clone()
	}
	return &c
}

// Normalize fills nil collections, seeds lifetime XP, and migrates legacy
// "committed_<epoch-ms>" badge entries into ActiveCommitment.
func (s *UserGamificationState) Normalize() {
	if s.Badges == nil {
		s.Badges = []string{}
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	if s.ActiveTheme == "" {
		s.ActiveTheme = DefaultTheme
	}
	if !slices.Contains(s.UnlockedThemes, DefaultTheme) {
		s.UnlockedThemes = append([]string{DefaultTheme}, s.UnlockedThemes...)
	}
	s.EnsureLifetimeXP()

	kept := s.Badges[:0]
	for _, b := range s.Badges {
		if ms, ok := strings.CutPrefix(b, legacyCommitmentPrefix); ok {
			if n, err := strconv.ParseInt(ms, 10, 64); err == nil && s.ActiveCommitment == nil {
				t := time.UnixMilli(n)
				s.ActiveCommitment = &t
			}
			continue
		}
		kept = append(kept, b)
	}
	s.Badges = kept
}

// EnsureLifetimeXP seeds lifetime XP from points when it was never recorded.
func (s *UserGamificationState) EnsureLifetimeXP() {
	if s.LifetimeXP == nil {
		xp := s.Points
		s.LifetimeXP = &xp
	}
}

// XP returns lifetime XP, falling back to points for unmigrated state.
func (s *UserGamificationState) XP() int {
	if s.LifetimeXP == nil {
		return s.Points
	}
	return *s.LifetimeXP
}

// AddPoints adjusts spendable points, clamping at zero.
func (s *UserGamificationState) AddPoints(delta int) {
	s.Points = max(s.Points+delta, 0)
}

// AddXP adjusts lifetime XP, clamping at zero.
func (s *UserGamificationState) AddXP(delta int) {
	xp := max(s.XP()+delta, 0)
	s.LifetimeXP = &xp
}

// HasBadge reports whether the badge is unlocked.
func (s *UserGamificationState) HasBadge(id string) bool {
	return slices.Contains(s.Badges, id)
}

// AddBadge unlocks a badge. Returns false if it was already unlocked.
func (s *UserGamificationState) AddBadge(id string) bool {
	if s.HasBadge(id) {
		return false
	}
	s.Badges = append(s.Badges, id)
	return true
}

// RemoveBadge revokes a badge. Returns false if it was not unlocked.
func (s *UserGamificationState) RemoveBadge(id string) bool {
	i := slices.Index(s.Badges, id)
	if i < 0 {
		return false
	}
	s.Badges = slices.Delete(s.Badges, i, i+1)
	return true
}

// AddItem grants one gift item.
func (s *UserGamificationState) AddItem(giftID string) {
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	s.Inventory[giftID]++
}

// TakeItem removes one gift item, deleting the entry at zero.
// Returns false if the item is not held.
func (s *UserGamificationState) TakeItem(giftID string) bool {
	n := s.Inventory[giftID]
	if n <= 0 {
		return false
	}
	if n == 1 {
		delete(s.Inventory, giftID)
	} else {
		s.Inventory[giftID] = n - 1
	}
	return true
}

// ItemCount returns the total number of gift items held.
func (s *UserGamificationState) ItemCount() int {
	total := 0
	for _, n := range s.Inventory {
		total += n
	}
	return total
}

// HasTheme reports whether the theme is unlocked.
func (s *UserGamificationState) HasTheme(id string) bool {
	return id == DefaultTheme || slices.Contains(s.UnlockedThemes, id)
}

// TeamStats is a derived, cacheable aggregate over a tribe's logs.
type TeamStats struct {
	WeeklyCount   int            `json:"weekly_count"`
	WeeklyTarget  int            `json:"weekly_target"`
	MonthlyCount  int            `json:"monthly_count"`
	MonthlyTarget int            `json:"monthly_target"`
	YearlyCount   int            `json:"yearly_count"`
	YearlyTarget  int            `json:"yearly_target"`
	UserStats     map[string]int `json:"user_stats"`
	TeamStreak    int            `json:"team_streak"`
	Degraded      bool           `json:"degraded,omitempty"`
}

// TeamTargets are the tribe goals compared against the counts.
type TeamTargets struct {
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

// DefaultTeamTargets are used when a tribe has no configured goals.
var DefaultTeamTargets = TeamTargets{Weekly: 9, Monthly: 36, Yearly: 400}
