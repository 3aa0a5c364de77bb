// ABOUTME: Sentinel errors returned by engine operations.
// ABOUTME: Callers match them with errors.Is.
package gamification

import "errors"

var (
	ErrNotEnoughPoints = errors.New("not enough points")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrThemeLocked     = errors.New("theme not unlocked")
	ErrUnknownGift     = errors.New("unknown gift item")
	ErrGiftNotHeld     = errors.New("gift item not in inventory")
	ErrSelfGift        = errors.New("cannot gift yourself")
	ErrUnknownQuest    = errors.New("unknown quest")
	ErrQuestNotManual  = errors.New("quest completes automatically")
)
