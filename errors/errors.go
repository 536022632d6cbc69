package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// Delivery path.
	ErrUnknownParticipant    = fmt.Errorf("unknown participant")
	ErrInvalidMessage        = fmt.Errorf("invalid message")
	ErrConversationConflict  = fmt.Errorf("conversation creation conflict")
	ErrGenerationUnavailable = fmt.Errorf("reply generation unavailable")
	ErrConversationNotFound  = fmt.Errorf("conversation not found")

	// Account path.
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

// MapToHTTPError converts domain sentinels into transport errors at the API
// boundary. Anything unrecognized becomes a 500 without leaking internals.
func MapToHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrUnknownParticipant):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, ErrConversationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	case errors.Is(err, ErrInvalidMessage):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message")
	case errors.Is(err, ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusBadRequest, "password does not meet requirements")
	case errors.Is(err, ErrUserAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
