package ports

import (
	"context"

	"feedherald/internal/domain"
)

// FeedSource returns the decoded records for one configured feed kind.
type FeedSource interface {
	Fetch(ctx context.Context, kind domain.FeedKind) ([]domain.Record, error)
}

// PageFetcher retrieves the HTML body behind a news entry's detail URL.
type PageFetcher interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
}

// Notifier delivers one notification to the channel bound to a feed kind.
type Notifier interface {
	Send(ctx context.Context, kind domain.FeedKind, note domain.Notification) error
}

// LedgerStore loads and persists the dedup ledger.
type LedgerStore interface {
	Load(ctx context.Context) (*domain.Ledger, error)
	Save(ctx context.Context, ledger *domain.Ledger) error
}
