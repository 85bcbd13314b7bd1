package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/conference-planner/internal/allocation"
	"github.com/example/conference-planner/internal/application"
	"github.com/example/conference-planner/internal/config"
	httptransport "github.com/example/conference-planner/internal/http"
	"github.com/example/conference-planner/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is not an error; the process environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	allocationService := application.NewAllocationServiceWithLogger(
		storage.Conferences, storage.SlotTypes, storage.Sessions, storage.Allocations, storage.Speakers,
		idGenerator, now, logger,
	)
	planningService := application.NewPlanningServiceWithLogger(
		storage.Conferences, storage.SlotTypes, allocationService, idGenerator, logger,
	)
	sessionService := application.NewSessionServiceWithLogger(storage.Sessions, logger)
	speakerService := application.NewSpeakerServiceWithLogger(
		storage.Speakers, storage.Conferences, allocationService.InvalidateSpeakers, logger,
	)
	suggestionService := application.NewSuggestionServiceWithLogger(
		storage.Conferences, storage.SlotTypes, storage.Sessions, storage.Allocations, storage.Speakers,
		allocationService, logger,
	)
	userService := application.NewUserService(storage.Users, idGenerator, now)
	authService := application.NewAuthServiceWithLogger(
		storage.Users, storage.AuthSessions, nil, tokenGenerator, now, cfg.SessionTTL, logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Users:       httptransport.NewUserHandler(userService, logger),
		Planning:    httptransport.NewPlanningHandler(planningService, logger),
		Allocations: httptransport.NewAllocationHandler(allocationService, logger),
		Sessions:    httptransport.NewSessionHandler(sessionService, logger),
		Speakers:    httptransport.NewSpeakerHandler(speakerService, logger),
		Suggestions: httptransport.NewSuggestionHandler(&seededSuggestions{service: suggestionService, seed: cfg.SuggestSeed}, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.EqualFold(r.URL.Path, "/auth/sessions") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// seededSuggestions applies the operator configured default seed to suggestion
// runs that did not request one of their own.
type seededSuggestions struct {
	service *application.SuggestionService
	seed    *uint64
}

func (s *seededSuggestions) Suggest(ctx context.Context, params application.SuggestParams) ([]allocation.Suggestion, error) {
	if params.Seed == nil {
		params.Seed = s.seed
	}
	return s.service.Suggest(ctx, params)
}

func (s *seededSuggestions) Apply(ctx context.Context, params application.ApplySuggestionsParams) (application.ApplySuggestionsResult, error) {
	return s.service.Apply(ctx, params)
}
