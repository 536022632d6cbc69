package domain

import (
	"strings"
	"time"
)

// PairKey identifies the unique conversation between two participants.
// The key is canonical: both handles are sorted before joining, so
// NewPairKey(a, b) and NewPairKey(b, a) produce the same key.
type PairKey string

const pairSeparator = "|"

func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(a + pairSeparator + b)
}

// Handles returns the two participant handles in canonical order.
func (k PairKey) Handles() (string, string) {
	parts := strings.SplitN(string(k), pairSeparator, 2)
	if len(parts) != 2 {
		return string(k), ""
	}
	return parts[0], parts[1]
}

// Contains reports whether the handle is one of the pair.
func (k PairKey) Contains(handle string) bool {
	a, b := k.Handles()
	return handle == a || handle == b
}

// Conversation is the single thread of messages between two participants.
// LastPosition is the ledger position of the most recent message; the next
// append gets LastPosition+1.
type Conversation struct {
	Key          PairKey
	CreatedAt    time.Time
	LastPosition int64
}
