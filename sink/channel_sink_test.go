package sink

import (
	"chat-relay/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelSink_Consume_And_Drain(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(2)

	m := domain.Message{Sender: "alice@example.com", Content: "hi"}
	req.NoError(s.Consume(context.Background(), m))

	got := <-s.Events
	req.Equal(m, got)
}

func TestChannelSink_Full_Buffer_Fails_Fast(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(1)

	req.NoError(s.Consume(context.Background(), domain.Message{Content: "one"}))
	err := s.Consume(context.Background(), domain.Message{Content: "two"})
	req.Error(err)
}

func TestChannelSink_Closed_Fails(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(1)

	s.Close()
	s.Close() // idempotent

	err := s.Consume(context.Background(), domain.Message{Content: "late"})
	req.Error(err)
}
