package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"feedherald/internal/config"
	"feedherald/internal/datetext"
	"feedherald/internal/domain"
	"feedherald/internal/infrastructure/discord"
	"feedherald/internal/infrastructure/fetcher"
	"feedherald/internal/infrastructure/github"
	"feedherald/internal/infrastructure/storage"
	"feedherald/internal/logging"
	"feedherald/internal/notify"
	"feedherald/internal/ports"
	"feedherald/internal/render"
	"feedherald/internal/usecase"
)

// Application wires configuration into a single-run feed processor.
type Application struct {
	logger    *slog.Logger
	processor *usecase.Processor
	ledgers   ports.LedgerStore
	db        *sql.DB
}

// New composes every adapter. Wiring errors (unknown feed kinds, feeds
// without builders, bad base URLs) surface here, before anything runs.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level)
	}

	normalizer := datetext.New(cfg.Source.Location())
	renderer, err := render.New(cfg.Source.BaseURL, normalizer)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	registry := notify.NewRegistry()
	registry.Register(notify.NewNewsBuilder(fetcher.New(nil), renderer, cfg.Colors, cfg.Posting.MaxBodyLength))

	kinds := make([]domain.FeedKind, 0, len(cfg.Feeds))
	paths := make(map[domain.FeedKind]string, len(cfg.Feeds))
	webhooks := make(map[domain.FeedKind]string, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		kind := domain.FeedKind(feed.Kind)
		switch kind {
		case domain.KindNews, domain.KindEvent, domain.KindGacha:
		default:
			return nil, fmt.Errorf("unknown feed kind %q in config", feed.Kind)
		}
		kinds = append(kinds, kind)
		paths[kind] = feed.Path
		webhooks[kind] = feed.WebhookURL
	}

	source := github.NewSource(github.Options{
		Repo:        cfg.Source.Repo,
		Token:       cfg.Source.Token,
		BaseURL:     cfg.Source.BaseURL,
		HTMLBaseURL: cfg.Source.HTMLBaseURL,
		Paths:       paths,
	}, nil)

	store, db, err := newLedgerStore(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	processor, err := usecase.NewProcessor(usecase.Deps{
		Source:    source,
		Builders:  registry,
		Notifier:  discord.NewNotifier(webhooks, nil),
		Kinds:     kinds,
		MaxPerRun: cfg.Posting.MaxPerRun,
		Delay:     cfg.Posting.Delay(),
		Logger:    logger.With("component", "processor"),
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	return &Application{
		logger:    logger,
		processor: processor,
		ledgers:   store,
		db:        db,
	}, nil
}

// Run loads the ledger, processes one batch per configured feed, and
// persists the ledger afterwards. The ledger is saved even when the run
// failed partway, so confirmed deliveries are never repeated.
func (a *Application) Run(ctx context.Context) error {
	ledger, err := a.ledgers.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	runErr := a.processor.Run(ctx, ledger)

	if err := a.ledgers.Save(ctx, ledger); err != nil {
		if runErr != nil {
			a.logger.Error("save ledger failed after run error", "error", err)
			return runErr
		}
		return fmt.Errorf("save ledger: %w", err)
	}

	return runErr
}

// Close releases the database handle when the postgres ledger is in use.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func newLedgerStore(cfg config.LedgerConfig) (ports.LedgerStore, *sql.DB, error) {
	switch cfg.Backend {
	case "", "file":
		return storage.NewFileStore(cfg.Path), nil, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres ledger: %w", err)
		}
		return storage.NewPostgresStore(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
