package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/auth"
	"github.com/diarylab/backend/internal/config"
	"github.com/diarylab/backend/internal/handler"
	aiservice "github.com/diarylab/backend/internal/service/ai"
	noteservice "github.com/diarylab/backend/internal/service/note"
	userservice "github.com/diarylab/backend/internal/service/user"
	"github.com/diarylab/backend/internal/store"
	"github.com/diarylab/backend/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to open database")
	}
	defer st.Close()

	tokens := auth.NewTokenService(cfg.Auth)
	users := userservice.NewService(st, tokens, log)
	notes := noteservice.NewService(st, log)

	var aiSvc *aiservice.Service
	if cfg.AI.Enabled() {
		aiSvc, err = aiservice.NewService(ctx, cfg.AI, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize AI service, continuing without AI functionality")
			aiSvc = nil
		} else {
			log.Info().Str("model", cfg.AI.Model).Str("base_url", cfg.AI.BaseURL).Msg("AI service initialized")
		}
	} else {
		log.Info().Msg("AI credentials not configured, skipping AI initialization")
	}

	registry := ws.NewRegistry()
	gate := ws.NewGate(tokens)
	var provider ws.CompletionStreamer
	if aiSvc != nil {
		provider = aiSvc
	}
	wsHandler := ws.NewHandler(gate, registry, provider, users, log)

	router := handler.NewRouter(users, notes, aiSvc, wsHandler, registry, tokens, log)

	startServer(ctx, cfg.Server, router, log)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, log zerolog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("diary backend listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
