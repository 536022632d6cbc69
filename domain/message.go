// Package domain contains core concepts of the messaging relay.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event inside a conversation.
// Position is the per-conversation ledger position assigned on append.
type Message struct {
	ID           uuid.UUID
	Conversation PairKey
	Position     int64
	Sender       string
	Recipient    string
	Content      string
	CreatedAt    time.Time
}
