package api

import (
	"chat-relay/errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (s *Server) register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := s.auth.Register(req.Handle, req.Password)
	if err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, authResponse{Token: string(token)})
}

func (s *Server) login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	token, err := s.auth.Login(req.Handle, req.Password)
	if err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(http.StatusOK, authResponse{Token: string(token)})
}
