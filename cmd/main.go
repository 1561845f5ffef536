package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"pairchat/api"
	"pairchat/auth"
	"pairchat/media"
	"pairchat/moderation"
	"pairchat/observability"
	"pairchat/realtime"
	"pairchat/repositories"
	"pairchat/search"
	"pairchat/services"
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

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern ensures all 'defer' statements (database and index cleanup) execute before the
// process exits, and keeps initialization testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load() // a .env file is optional

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	maskChar, err := config.maskRune()
	if err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB) & search index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	userIndex, err := search.NewUserIndex(config.BlugeFilepath, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open user index: %w", err)
	}
	defer func() {
		log.Info("Closing user index...")
		_ = userIndex.Close()
	}()

	// 3. Collaborators
	mediaStore, err := media.NewS3Store(ctx, media.Config{
		Endpoint:  config.S3Endpoint,
		Region:    config.S3Region,
		Bucket:    config.S3Bucket,
		AccessKey: config.S3AccessKey,
		SecretKey: config.S3SecretKey,
		PublicURL: config.S3PublicURL,
	}, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("media store init failed: %w", err)
	}

	moderator, err := moderation.NewModeratorFromFile(config.CensoredWordsPath, maskChar)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation init failed: %w", err)
	}
	if moderator != nil {
		log.Info("Moderation enabled", "words_file", config.CensoredWordsPath)
	}

	// 4. Core wiring: repositories, realtime gateway, services
	userRepository := repositories.NewUserRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	issuer := auth.NewTokenIssuer(
		config.AccessTokenSecret, config.RefreshTokenSecret,
		config.AccessTokenTTL, config.RefreshTokenTTL,
	)

	gateway := realtime.NewGateway(log, config.PresenceGrace, config.ChannelBufferSize, func(r *http.Request) bool {
		return config.CORSOrigin == "*" || r.Header.Get("Origin") == config.CORSOrigin
	})

	authService := services.NewAuthService(userRepository, issuer, mediaStore, userIndex)
	userService := services.NewUserService(userRepository, mediaStore, userIndex)
	chatService := services.NewChatService(messageRepository, userRepository, mediaStore, gateway, moderator)

	router := api.NewRouter(log, authService, userService, chatService, gateway,
		observability.NewReporter(), api.Options{
			CORSOrigin:   config.CORSOrigin,
			SecureCookie: config.SecureCookies,
		})

	// 5. HTTP server with graceful shutdown
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown error: %w", err)
	}
	log.Info("Program stopped cleanly")

	return exitOK, nil
}
