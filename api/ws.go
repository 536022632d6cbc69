package api

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/sink"
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsInbound struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

type wsOutbound struct {
	Message *messagePayload `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// connect upgrades the request to a websocket and binds the caller's live
// channel. The connection is the caller's delivery channel until it drops;
// a later connection for the same handle supersedes this one in the
// registry, but this handler's cleanup never evicts the newer binding.
//
// The socket is read and written by separate loops; all writes go through
// the single writer draining outbound traffic, as gorilla requires.
func (s *Server) connect(c echo.Context) error {
	handle := auth.CallerHandle(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	channel := sink.NewChannelSink(s.bufferSize)
	s.chat.Connect(handle, channel)
	defer func() {
		s.chat.Disconnect(handle, channel)
		channel.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Inbound sends and their errors; replies to the caller are deposited
	// into the same sink, so the write loop below stays the only writer.
	sendErrors := make(chan string, 8)
	go func() {
		defer cancel()
		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			reply, err := s.chat.Send(ctx, domain.SendCommand{
				Sender:    handle,
				Recipient: in.Recipient,
				Content:   in.Content,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				s.log.Warn("websocket send failed", "handle", handle, "error", err)
				select {
				case sendErrors <- "failed to send message":
				default:
				}
				continue
			}
			if reply != nil {
				if err := channel.Consume(ctx, *reply); err != nil {
					s.log.Warn("dropping synthetic reply, channel unavailable",
						"handle", handle, "error", err)
				}
			}
		}
	}()

	for {
		var out wsOutbound
		select {
		case <-ctx.Done():
			return nil
		case message := <-channel.Events:
			payload := toMessagePayload(message)
			out.Message = &payload
		case errText := <-sendErrors:
			out.Error = errText
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(out); err != nil {
			s.log.Warn("websocket write failed, closing connection",
				"handle", handle, "error", err)
			return nil
		}
	}
}
