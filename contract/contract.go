//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
)

// EventSink is the delivery end of a live connection. Consume must not
// block forever: implementations either buffer or fail fast so the router
// can fall back.
type EventSink interface {
	Consume(ctx context.Context, m domain.Message) error
}

// IRegistry tracks which participant handles currently own a live channel.
// A handle is bound to at most one sink; re-subscribing replaces the
// previous binding (reconnect semantics).
type IRegistry interface {
	Get(handle string) (EventSink, bool)
	Subscribe(handle string, sink EventSink)
	Unsubscribe(handle string, sink EventSink)
}

// Generator is the external reply-generation service. It may be slow or
// fail; callers own the deadline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
