// ABOUTME: Spending side of the reward loop: theme shop, equipping, gifts, commitments.
// ABOUTME: Points spent here are recorded in the point ledger as "spent".
package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/tribe/internal/models"
)

// PurchaseTheme buys and equips a theme. Buying a theme already owned just
// equips it without charging.
func (e *Engine) PurchaseTheme(ctx context.Context, profile models.UserProfile, themeID string) (*models.UserGamificationState, error) {
	theme, ok := models.ThemeByID(themeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, themeID)
	}
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !state.HasTheme(theme.ID) {
		if state.Points < theme.Price {
			return nil, fmt.Errorf("%w: %s costs %d, have %d", ErrNotEnoughPoints, theme.ID, theme.Price, state.Points)
		}
		state.AddPoints(-theme.Price)
		state.UnlockedThemes = append(state.UnlockedThemes, theme.ID)
		e.appendPoints(ctx, profile, -theme.Price, models.PointsSpent, models.SourceShop, theme.ID)
	}
	state.ActiveTheme = theme.ID

	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	return state, nil
}

// EquipTheme switches to an unlocked theme.
func (e *Engine) EquipTheme(ctx context.Context, profile models.UserProfile, themeID string) (*models.UserGamificationState, error) {
	if _, ok := models.ThemeByID(themeID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, themeID)
	}
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !state.HasTheme(themeID) {
		return nil, fmt.Errorf("%w: %s", ErrThemeLocked, themeID)
	}
	state.ActiveTheme = themeID
	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SendGift gives one held item to another tribe member. The item leaves the
// sender's inventory; the transfer is recorded as a gift transaction and
// counts toward the sender's gift quests.
func (e *Engine) SendGift(ctx context.Context, from models.UserProfile, to, giftID string) (*models.GiftTransaction, error) {
	if _, ok := models.GiftByID(giftID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGift, giftID)
	}
	if to == from.DisplayName {
		return nil, ErrSelfGift
	}
	state, _, err := e.loadState(ctx, from)
	if err != nil {
		return nil, err
	}
	if !state.TakeItem(giftID) {
		return nil, fmt.Errorf("%w: %s", ErrGiftNotHeld, giftID)
	}
	e.refreshQuests(state)
	res := e.advanceQuests(ctx, from, state, 1, func(q *models.Quest) bool { return q.Type == models.QuestGift })
	for _, q := range res.Completed {
		e.logger.Info("quest completed", "user", from.DisplayName, "quest", q.TemplateID)
	}
	if err := e.saveState(ctx, from, state); err != nil {
		return nil, err
	}

	tx := models.NewGiftTransaction(from.DisplayName, to, giftID, from.TribeID)
	if err := e.store.RecordGift(ctx, tx); err != nil {
		e.logger.Warn("gift record failed", "from", from.DisplayName, "to", to, "gift", giftID, "err", err)
	}
	return tx, nil
}

// Commit pledges a workout at the given time. It stores a commitment log,
// which never earns rewards, and marks the pledge as active until that log
// is deleted.
func (e *Engine) Commit(ctx context.Context, profile models.UserProfile, at time.Time) (*models.WorkoutLog, error) {
	state, _, err := e.loadState(ctx, profile)
	if err != nil {
		return nil, err
	}

	l := models.NewWorkoutLog(profile.DisplayName, models.KindCommitment).
		WithDate(at).
		WithTribe(profile.TribeID)
	l.CreatedAt = e.now()
	if err := e.store.CreateLog(ctx, l); err != nil {
		return nil, fmt.Errorf("create commitment: %w", err)
	}

	t := at
	state.ActiveCommitment = &t
	if err := e.saveState(ctx, profile, state); err != nil {
		return nil, err
	}
	return l, nil
}
