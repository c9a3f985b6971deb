package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/config"
	"github.com/immersion-facile/convention-core/internal/convention"
	httptransport "github.com/immersion-facile/convention-core/internal/http"
	"github.com/immersion-facile/convention-core/internal/logging"
	"github.com/immersion-facile/convention-core/internal/persistence"
	"github.com/immersion-facile/convention-core/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, "conventiond")

	storage, err := sqlite.OpenWithOptions(cfg.SQLiteDSN, sqlite.DefaultOptions(), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	conventionService := application.NewConventionServiceWithLogger(
		newConventionRepositoryAdapter(storage),
		cfg.Rules,
		uuid.NewString,
		time.Now,
		logger,
	)
	scheduleService := application.NewScheduleService(logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Conventions: httptransport.NewConventionHandler(conventionService, logger),
		Schedules:   httptransport.NewScheduleHandler(scheduleService, logger),
		Health:      storage.Ping,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
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

	logger.Info("convention API listening", "addr", server.Addr, "rules_file", cfg.RulesFile)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type conventionRepositoryAdapter struct {
	repo persistence.ConventionRepository
}

func newConventionRepositoryAdapter(repo persistence.ConventionRepository) *conventionRepositoryAdapter {
	return &conventionRepositoryAdapter{repo: repo}
}

func (a *conventionRepositoryAdapter) CreateConvention(ctx context.Context, record application.ConventionRecord) (application.ConventionRecord, error) {
	model, err := toPersistenceConvention(record)
	if err != nil {
		return application.ConventionRecord{}, err
	}
	stored, err := a.repo.CreateConvention(ctx, model)
	if err != nil {
		return application.ConventionRecord{}, err
	}
	return toApplicationConvention(stored)
}

func (a *conventionRepositoryAdapter) GetConvention(ctx context.Context, id string) (application.ConventionRecord, error) {
	stored, err := a.repo.GetConvention(ctx, id)
	if err != nil {
		return application.ConventionRecord{}, err
	}
	return toApplicationConvention(stored)
}

func (a *conventionRepositoryAdapter) UpdateConvention(ctx context.Context, record application.ConventionRecord, expectedVersion int64) (application.ConventionRecord, error) {
	model, err := toPersistenceConvention(record)
	if err != nil {
		return application.ConventionRecord{}, err
	}
	stored, err := a.repo.UpdateConvention(ctx, model, expectedVersion)
	if err != nil {
		return application.ConventionRecord{}, err
	}
	return toApplicationConvention(stored)
}

func (a *conventionRepositoryAdapter) ListConventions(ctx context.Context, filter application.ConventionRepositoryFilter) ([]application.ConventionRecord, error) {
	persistedFilter := persistence.ConventionFilter{AgencyID: filter.AgencyID}
	for _, status := range filter.Statuses {
		persistedFilter.Statuses = append(persistedFilter.Statuses, string(status))
	}
	models, err := a.repo.ListConventions(ctx, persistedFilter)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	records := make([]application.ConventionRecord, 0, len(models))
	for _, model := range models {
		record, err := toApplicationConvention(model)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func toPersistenceConvention(record application.ConventionRecord) (persistence.Convention, error) {
	c := record.Convention
	payload, err := json.Marshal(c)
	if err != nil {
		return persistence.Convention{}, fmt.Errorf("encode convention %s: %w", c.ID, err)
	}
	return persistence.Convention{
		ID:             c.ID,
		Status:         string(c.Status),
		InternshipKind: string(c.InternshipKind),
		AgencyID:       c.AgencyID,
		DateStart:      c.DateStart.String(),
		DateEnd:        c.DateEnd.String(),
		Payload:        payload,
		Version:        record.Version,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

func toApplicationConvention(model persistence.Convention) (application.ConventionRecord, error) {
	var c convention.Convention
	if err := json.Unmarshal(model.Payload, &c); err != nil {
		return application.ConventionRecord{}, fmt.Errorf("decode convention %s: %w", model.ID, err)
	}
	// The indexed columns are authoritative.
	c.ID = model.ID
	c.Status = convention.Status(model.Status)
	return application.ConventionRecord{
		Convention: c,
		Version:    model.Version,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
