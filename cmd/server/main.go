package main

import (
	"chat-relay/ai"
	"chat-relay/api"
	"chat-relay/internal"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (like the database close)
// executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// 3. Core wiring: repositories, registry, fallback responder, router
	users := repositories.NewUserRepository(db)
	conversations := repositories.NewConversationRepository(db, logger, config.LimitMessages)
	registry := runtime.NewRegistry()

	generator := ai.NewOpenAIGenerator(func(o *ai.Options) {
		if config.GenerationModel != "" {
			o.Model = config.GenerationModel
		}
	})
	responder := runtime.NewResponder(logger, generator, conversations, config.GenerationDeadline)
	router := runtime.NewRouter(logger, users, conversations, registry, responder)

	chatService := services.NewChatService(router, conversations, users, registry)
	authService := services.NewAuthService(users, config.AuthTokenDuration)

	// 4. HTTP/websocket surface with graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(logger, chatService, authService,
		config.Host, config.Port, config.ConnectionBufferSize)

	logger.Info("relay started",
		"host", config.Host,
		"port", config.Port,
		"generation_deadline", config.GenerationDeadline)

	if err := server.Start(ctx); err != nil {
		return exitRuntime, err
	}

	logger.Info("relay stopped cleanly")
	return exitOK, nil
}
