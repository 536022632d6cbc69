// Package domain contains core concepts of the messaging relay.
// This file defines Participant entities and their availability states.
// No runtime, network, or UI logic should be added here.
package domain

// Availability tells the delivery path whether a participant is willing
// to receive live messages.
type Availability string

const (
	Available Availability = "AVAILABLE"
	Busy      Availability = "BUSY"
)

// Participant represents an authenticated identity able to send and
// receive messages. The handle is the unique external identifier.
type Participant struct {
	Handle       string
	Availability Availability
}

// Reachable reports whether a live push is allowed for this participant.
func (p Participant) Reachable() bool {
	return p.Availability == Available
}
