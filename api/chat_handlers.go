package api

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

type sendRequest struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

type messagePayload struct {
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type sendResponse struct {
	Delivered bool            `json:"delivered"`
	Reply     *messagePayload `json:"reply,omitempty"`
}

type historyResponse struct {
	Messages []messagePayload `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

type statusResponse struct {
	Handle       string `json:"handle"`
	Availability string `json:"availability"`
}

type setStatusRequest struct {
	Availability string `json:"availability"`
}

func toMessagePayload(m domain.Message) messagePayload {
	return messagePayload{
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Content:   m.Content,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
	}
}

// send delivers one message from the authenticated caller. The response
// mirrors the router contract: delivered live means no reply payload, an
// unavailable recipient means the synthetic reply comes back inline.
func (s *Server) send(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reply, err := s.chat.Send(c.Request().Context(), domain.SendCommand{
		Sender:    auth.CallerHandle(c),
		Recipient: req.Recipient,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return errors.MapToHTTPError(err)
	}

	resp := sendResponse{Delivered: reply == nil}
	if reply != nil {
		resp.Reply = lo.ToPtr(toMessagePayload(*reply))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) messages(c echo.Context) error {
	var cursor *string
	if raw := c.QueryParam("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := s.chat.History(auth.CallerHandle(c), c.Param("other"), cursor)
	if err != nil {
		return errors.MapToHTTPError(err)
	}

	return c.JSON(http.StatusOK, historyResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) messagePayload {
			return toMessagePayload(m)
		}),
		Cursor: next,
	})
}

func (s *Server) status(c echo.Context) error {
	handle := c.Param("handle")
	availability, err := s.chat.Availability(handle)
	if err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		Handle:       handle,
		Availability: string(availability),
	})
}

// setStatus toggles the caller's own availability. Only the two known
// states are accepted.
func (s *Server) setStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	availability := domain.Availability(req.Availability)
	if availability != domain.Available && availability != domain.Busy {
		return echo.NewHTTPError(http.StatusBadRequest, "availability must be AVAILABLE or BUSY")
	}

	handle := auth.CallerHandle(c)
	if err := s.chat.SetAvailability(handle, availability); err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		Handle:       handle,
		Availability: string(availability),
	})
}
