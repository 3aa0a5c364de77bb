// ABOUTME: Append-only XP and point ledger rows plus gift transactions.
// ABOUTME: Ledger rows are for historical display and are never mutated.
package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerSource is the category of event that produced a ledger row.
type LedgerSource string

const (
	SourceWorkout LedgerSource = "workout"
	SourceBadge   LedgerSource = "badge"
	SourceQuest   LedgerSource = "quest"
	SourceShop    LedgerSource = "shop"
)

// PointType distinguishes earning from spending.
type PointType string

const (
	PointsEarned PointType = "earned"
	PointsSpent  PointType = "spent"
)

// XPLogEntry records one XP change.
type XPLogEntry struct {
	ID        uuid.UUID    `json:"id" yaml:"id"`
	UserID    string       `json:"user_id" yaml:"user_id"`
	Amount    int          `json:"amount" yaml:"amount"`
	Source    LedgerSource `json:"source" yaml:"source"`
	SourceID  string       `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
}

// NewXPLogEntry creates an XP ledger row stamped now.
func NewXPLogEntry(userID string, amount int, source LedgerSource, sourceID string) *XPLogEntry {
	return &XPLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Source:    source,
		SourceID:  sourceID,
		CreatedAt: time.Now(),
	}
}

// PointLogEntry records one point change.
type PointLogEntry struct {
	ID        uuid.UUID    `json:"id" yaml:"id"`
	UserID    string       `json:"user_id" yaml:"user_id"`
	Amount    int          `json:"amount" yaml:"amount"`
	Type      PointType    `json:"type" yaml:"type"`
	Source    LedgerSource `json:"source" yaml:"source"`
	SourceID  string       `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
}

// NewPointLogEntry creates a point ledger row stamped now.
func NewPointLogEntry(userID string, amount int, typ PointType, source LedgerSource, sourceID string) *PointLogEntry {
	return &PointLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Type:      typ,
		Source:    source,
		SourceID:  sourceID,
		CreatedAt: time.Now(),
	}
}

// GiftTransaction records a gift item handed from one tribe member to another.
type GiftTransaction struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	From      string    `json:"from" yaml:"from"`
	To        string    `json:"to" yaml:"to"`
	GiftID    string    `json:"gift_id" yaml:"gift_id"`
	TribeID   string    `json:"tribe_id,omitempty" yaml:"tribe_id,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewGiftTransaction creates a gift transaction stamped now.
func NewGiftTransaction(from, to, giftID, tribeID string) *GiftTransaction {
	return &GiftTransaction{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		GiftID:    giftID,
		TribeID:   tribeID,
		CreatedAt: time.Now(),
	}
}
