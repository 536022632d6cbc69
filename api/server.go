// Package api exposes the relay over HTTP and websocket, mirroring the
// shape of the original REST + socket surface.
package api

import (
	"chat-relay/auth"
	"chat-relay/services"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server wires services into echo routes.
type Server struct {
	echo       *echo.Echo
	log        *slog.Logger
	chat       services.IChatService
	auth       services.IAuthService
	bufferSize int
	host       string
	port       int
}

func NewServer(log *slog.Logger, chat services.IChatService, authSvc services.IAuthService,
	host string, port, bufferSize int) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:       e,
		log:        log,
		chat:       chat,
		auth:       authSvc,
		bufferSize: bufferSize,
		host:       host,
		port:       port,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	authGroup := s.echo.Group("/api/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	chatGroup := s.echo.Group("/api/chat", auth.RequireAuth())
	chatGroup.POST("/send", s.send)
	chatGroup.GET("/messages/:other", s.messages)
	chatGroup.GET("/status/:handle", s.status)
	chatGroup.PUT("/status", s.setStatus)
	chatGroup.GET("/ws", s.connect)
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", s.host, s.port)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
