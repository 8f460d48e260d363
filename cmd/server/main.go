package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/agent"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/api"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/config"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/llm"
	"github.com/DhivakarBS/Travel-Planning-Assistant-AI/internal/session"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	store := session.New()

	llmService, err := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.Model, logger.Named("llm"))
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}

	travelAgent := agent.New(llmService, store, logger.Named("agent"), agent.Options{
		AutoCreateSessions: cfg.AutoCreateSessions,
		MaxHistoryMessages: cfg.MaxHistoryMessages,
		MaxHistoryTokens:   cfg.MaxHistoryTokens,
	})

	handler := api.NewHandler(store, travelAgent, logger.Named("api"))

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/", http.FileServer(http.Dir(cfg.WebDir)))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.WithCORS(api.WithLogging(logger.Named("http"), mux)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SessionTTL > 0 {
		go janitor(ctx, store, cfg.SessionTTL, logger.Named("janitor"))
	}

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// janitor removes sessions idle longer than the TTL once an hour.
func janitor(ctx context.Context, store *session.Store, ttl time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.DeleteIdle(ttl); removed > 0 {
				logger.Info("removed idle sessions", zap.Int("count", removed))
			}
		}
	}
}
