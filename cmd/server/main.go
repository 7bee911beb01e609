package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemini-chat/backend/internal/chat/gemini"
	chathandler "gemini-chat/backend/internal/chat/handler"
	chatservice "gemini-chat/backend/internal/chat/service"
	"gemini-chat/backend/internal/config"
	"gemini-chat/backend/internal/db"
	"gemini-chat/backend/internal/db/migrate"
	identityhandler "gemini-chat/backend/internal/identity/handler"
	identityservice "gemini-chat/backend/internal/identity/service"
	"gemini-chat/backend/internal/security"
	"gemini-chat/backend/internal/server"
	"gemini-chat/backend/internal/telemetry"
	"gemini-chat/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := telemetry.InitLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, "gemini-chat", "1.0.0")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	database, dialect, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer database.Close()
	logger.Info("store ready", "dialect", string(dialect))

	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.TokenTTL())
	auth := identityservice.NewAuthService(
		repository.NewSQLRepository(database),
		security.NewHasher(cfg.BcryptCost),
		tokens,
	)

	var generator chatservice.Generator
	if cfg.GeminiAPIKey != "" {
		generator = gemini.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.UpstreamTimeoutDuration())
	} else {
		logger.Warn("GEMINI_API_KEY not set; relay runs in offline mock mode")
	}
	relay := chatservice.NewRelay(generator)

	if cfg.JWTSecret == config.DevSecret {
		logger.Warn("signing tokens with the development placeholder secret; do not use outside local development")
	}

	router := server.New(server.Options{
		CORSOrigin: cfg.CORSOrigin,
		Tokens:     tokens,
		Auth:       identityhandler.NewHandler(auth),
		Chat:       chathandler.NewHandler(relay),
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
	if err := telemetryShutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err.Error())
	}
	logger.Info("server stopped")
}
