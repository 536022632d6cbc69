package domain

import "time"

// SendCommand is the normalized intent of delivering one message from
// Sender to Recipient. CreatedAt is captured at the entry point so the
// ledger records issuance time, not persistence time.
type SendCommand struct {
	Sender    string
	Recipient string
	Content   string
	CreatedAt time.Time
}
