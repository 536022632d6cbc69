package api

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	reply       *domain.Message
	sendErr     error
	history     []domain.Message
	historyErr  error
	statuses    map[string]domain.Availability
	lastCommand domain.SendCommand
}

func (s *stubChatService) Send(ctx context.Context, cmd domain.SendCommand) (*domain.Message, error) {
	s.lastCommand = cmd
	return s.reply, s.sendErr
}

func (s *stubChatService) History(handle, other string, cursor *string) ([]domain.Message, *string, error) {
	return s.history, nil, s.historyErr
}

func (s *stubChatService) Availability(handle string) (domain.Availability, error) {
	availability, ok := s.statuses[handle]
	if !ok {
		return "", errors.ErrUnknownParticipant
	}
	return availability, nil
}

func (s *stubChatService) SetAvailability(handle string, availability domain.Availability) error {
	if s.statuses == nil {
		s.statuses = make(map[string]domain.Availability)
	}
	s.statuses[handle] = availability
	return nil
}

func (s *stubChatService) Connect(handle string, sink contract.EventSink) {}
func (s *stubChatService) Disconnect(handle string, sink contract.EventSink) {}

type stubAuthService struct {
	token services.Token
	err   error
}

func (s *stubAuthService) Register(handle, password string) (services.Token, error) {
	return s.token, s.err
}

func (s *stubAuthService) Login(handle, password string) (services.Token, error) {
	return s.token, s.err
}

func newTestServer(chat *stubChatService, authSvc *stubAuthService) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(logger, chat, authSvc, "localhost", 0, 8)
}

func bearerToken(t *testing.T, handle string) string {
	t.Helper()
	token, err := auth.GenerateToken("user-id", handle, []string{"user"}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRegister_Returns_Token(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{}, &stubAuthService{token: "jwt-token"})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"handle":"alice@example.com","password":"ComplexPass123!"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusCreated, rec.Code)
	var resp authResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Equal("jwt-token", resp.Token)
}

func TestSend_Requires_Authentication(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{}, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/chat/send",
		strings.NewReader(`{"recipient":"bob@example.com","content":"hi"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestSend_Live_Delivery_Has_No_Reply(t *testing.T) {
	req := require.New(t)
	chat := &stubChatService{reply: nil}
	server := newTestServer(chat, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/chat/send",
		strings.NewReader(`{"recipient":"bob@example.com","content":"hi"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	request.Header.Set("Authorization", bearerToken(t, "alice@example.com"))
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusOK, rec.Code)
	var resp sendResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.True(resp.Delivered)
	req.Nil(resp.Reply)

	// The sender identity comes from the token, not the body
	req.Equal("alice@example.com", chat.lastCommand.Sender)
	req.Equal("bob@example.com", chat.lastCommand.Recipient)
}

func TestSend_Unavailable_Recipient_Returns_Reply(t *testing.T) {
	req := require.New(t)
	chat := &stubChatService{reply: &domain.Message{
		Sender:    "bob@example.com",
		Recipient: "alice@example.com",
		Content:   "hello there",
		Position:  2,
	}}
	server := newTestServer(chat, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/chat/send",
		strings.NewReader(`{"recipient":"bob@example.com","content":"hi"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	request.Header.Set("Authorization", bearerToken(t, "alice@example.com"))
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusOK, rec.Code)
	var resp sendResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.False(resp.Delivered)
	req.NotNil(resp.Reply)
	req.Equal("hello there", resp.Reply.Content)
	req.Equal("bob@example.com", resp.Reply.Sender)
}

func TestSend_Unknown_Recipient_Maps_To_404(t *testing.T) {
	req := require.New(t)
	chat := &stubChatService{sendErr: errors.ErrUnknownParticipant}
	server := newTestServer(chat, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/chat/send",
		strings.NewReader(`{"recipient":"ghost@example.com","content":"hi"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	request.Header.Set("Authorization", bearerToken(t, "alice@example.com"))
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusNotFound, rec.Code)
}

func TestSetStatus_Rejects_Unknown_State(t *testing.T) {
	req := require.New(t)
	server := newTestServer(&stubChatService{}, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/chat/status",
		strings.NewReader(`{"availability":"SLEEPING"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	request.Header.Set("Authorization", bearerToken(t, "alice@example.com"))
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestStatus_Roundtrip(t *testing.T) {
	req := require.New(t)
	chat := &stubChatService{statuses: map[string]domain.Availability{}}
	server := newTestServer(chat, &stubAuthService{})

	rec := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/chat/status",
		strings.NewReader(`{"availability":"BUSY"}`))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	request.Header.Set("Authorization", bearerToken(t, "bob@example.com"))
	server.echo.ServeHTTP(rec, request)
	req.Equal(http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/api/chat/status/bob@example.com", nil)
	request.Header.Set("Authorization", bearerToken(t, "alice@example.com"))
	server.echo.ServeHTTP(rec, request)

	req.Equal(http.StatusOK, rec.Code)
	var resp statusResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Equal("BUSY", resp.Availability)
}
