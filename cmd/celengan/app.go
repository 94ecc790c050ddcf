package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/celengan/internal/classification"
	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/config"
	"github.com/Veraticus/celengan/internal/dialogue"
	"github.com/Veraticus/celengan/internal/model"
	"github.com/Veraticus/celengan/internal/parser"
	"github.com/Veraticus/celengan/internal/reply"
	"github.com/Veraticus/celengan/internal/service"
	"github.com/Veraticus/celengan/internal/session"
	"github.com/Veraticus/celengan/internal/storage"
	"github.com/spf13/viper"
)

// app holds everything a command needs to talk to the engine.
type app struct {
	db     *storage.SQLiteStorage
	engine *dialogue.Engine
	cfg    config.Config
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newApp opens and migrates the ledger, then wires the engine over it.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	db, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError("cannot open the ledger at "+cfg.Database.Path, err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	p, err := newParser(cfg.Parser)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	gateway, err := newGateway(ctx, cfg.Classifier)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	lang := model.ParseLanguage(cfg.Engine.Language)
	engine, err := dialogue.NewEngine(dialogue.Dependencies{
		Store:       session.NewSQLiteStore(db.DB()),
		Classifier:  gateway,
		Commits:     db,
		Aggregation: db,
		Parser:      p,
		Composer:    reply.NewComposer(lang),
	}, dialogue.Options{
		Logger:   slog.Default(),
		Language: lang,
		Retry: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: cfg.Engine.CommitRetryDelay,
		},
		MaxTurns:          cfg.Engine.MaxTurns,
		MaxUnrelatedTurns: cfg.Engine.MaxUnrelatedTurns,
		PendingTTL:        cfg.Engine.PendingTTL,
		SnapshotTTL:       cfg.Engine.SnapshotTTL,
	})
	if err != nil {
		_ = gateway.Close()
		_ = db.Close()
		return nil, err
	}

	slog.Debug("Engine ready",
		"database", db.Path(),
		"classifier", cfg.Classifier.Backend,
		"language", lang)

	return &app{db: db, engine: engine, cfg: cfg}, nil
}

func (a *app) close() error {
	return errors.Join(a.engine.Close(), a.db.Close())
}

func newParser(cfg config.ParserConfig) (*parser.Parser, error) {
	vocab, err := parser.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return parser.New(parser.Options{
		Pick:          parser.PickPolicy(cfg.Pick),
		MinBareAmount: cfg.MinBareAmount,
	}, vocab), nil
}

func newGateway(ctx context.Context, cfg config.ClassifierConfig) (*classification.Gateway, error) {
	backend, err := classification.NewBackend(ctx, classification.BackendConfig{
		Name:      cfg.Backend,
		Endpoint:  cfg.Endpoint,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	return classification.NewGateway(backend, classification.GatewayConfig{
		Threshold: cfg.Threshold,
		Timeout:   cfg.Timeout,
		CacheTTL:  cfg.CacheTTL,
	}, slog.Default()), nil
}

// defaultUser names the ledger owner when --user is not given.
func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "me"
}
