// Package sink provides delivery-channel implementations consumed by the
// transport layer.
package sink

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"sync"
)

// ChannelSink bridges the router and one websocket connection. The router
// deposits messages into Events; the connection's write loop drains it.
// Consume never blocks: a full buffer or a closed sink is reported as an
// error so the router can fall back.
type ChannelSink struct {
	Events chan domain.Message

	done      chan struct{}
	closeOnce sync.Once
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{
		Events: make(chan domain.Message, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume implements contract.EventSink.
func (s *ChannelSink) Consume(ctx context.Context, m domain.Message) error {
	select {
	case <-s.done:
		return fmt.Errorf("sink closed")
	default:
	}

	select {
	case s.Events <- m:
		return nil
	case <-s.done:
		return fmt.Errorf("sink closed")
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("delivery buffer full")
	}
}

// Close marks the sink dead. Idempotent; called when the connection goes away.
func (s *ChannelSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
