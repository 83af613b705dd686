package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feedherald/internal/domain"
	"feedherald/internal/notify"
	"feedherald/internal/ports"
)

const defaultMaxPerRun = 10

// Deps wires the driven adapters into the processor.
type Deps struct {
	Source    ports.FeedSource
	Builders  *notify.Registry
	Notifier  ports.Notifier
	Kinds     []domain.FeedKind
	MaxPerRun int
	Delay     time.Duration
	Logger    *slog.Logger
}

// Processor decides which records go out this run and keeps the ledger in
// step with what was actually delivered.
type Processor struct {
	source    ports.FeedSource
	builders  *notify.Registry
	notifier  ports.Notifier
	kinds     []domain.FeedKind
	maxPerRun int
	delay     time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewProcessor validates the wiring: every configured feed kind must have a
// notification builder, so a misconfigured variant fails at startup instead
// of per record.
func NewProcessor(deps Deps) (*Processor, error) {
	if deps.Source == nil || deps.Builders == nil || deps.Notifier == nil {
		return nil, fmt.Errorf("processor requires a source, builder registry and notifier")
	}
	for _, kind := range deps.Kinds {
		if _, err := deps.Builders.Resolve(kind); err != nil {
			return nil, fmt.Errorf("feed %s: %w", kind, err)
		}
	}

	maxPerRun := deps.MaxPerRun
	if maxPerRun <= 0 {
		maxPerRun = defaultMaxPerRun
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		source:    deps.Source,
		builders:  deps.Builders,
		notifier:  deps.Notifier,
		kinds:     deps.Kinds,
		maxPerRun: maxPerRun,
		delay:     deps.Delay,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Run processes every configured feed once, in order. A failing feed does
// not block the remaining ones. The ledger is mutated in place as deliveries
// succeed; persisting it is the caller's job.
func (p *Processor) Run(ctx context.Context, ledger *domain.Ledger) error {
	var errs []error
	for _, kind := range p.kinds {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := p.processFeed(ctx, kind, ledger); err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Processor) processFeed(ctx context.Context, kind domain.FeedKind, ledger *domain.Ledger) error {
	builder, err := p.builders.Resolve(kind)
	if err != nil {
		return err
	}

	records, err := p.source.Fetch(ctx, kind)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	eligible := p.filterEligible(kind, records, ledger)
	p.logger.Info("feed scanned",
		"feed", string(kind), "records", len(records), "eligible", len(eligible))

	attempts := 0
	for _, record := range eligible {
		if attempts >= p.maxPerRun {
			break
		}
		if attempts > 0 && p.delay > 0 {
			if err := sleep(ctx, p.delay); err != nil {
				return err
			}
		}
		attempts++

		note, err := builder.Build(ctx, record)
		if err != nil {
			p.logger.Error("build notification failed",
				"feed", string(kind), "id", record.EntryID(), "error", err)
			continue
		}
		if err := p.notifier.Send(ctx, kind, note); err != nil {
			p.logger.Error("delivery failed",
				"feed", string(kind), "id", record.EntryID(), "error", err)
			continue
		}
		ledger.Add(kind, record.EntryID())
	}

	return nil
}

// filterEligible keeps records that have not been delivered and whose start
// time has passed, preserving the batch's source order.
func (p *Processor) filterEligible(kind domain.FeedKind, records []domain.Record, ledger *domain.Ledger) []domain.Record {
	now := p.now().UnixMilli()
	eligible := make([]domain.Record, 0, len(records))
	for _, record := range records {
		if ledger.Contains(kind, record.EntryID()) {
			continue
		}
		if startAt := record.StartAtMillis(); startAt > 0 && startAt > now {
			continue
		}
		eligible = append(eligible, record)
	}
	return eligible
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
