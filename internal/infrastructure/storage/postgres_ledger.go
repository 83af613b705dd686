package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"feedherald/internal/domain"
	"feedherald/internal/ports"
)

// PostgresStore keeps the ledger in a posted_entries(feed, entry_id) table
// for deployments that already run a database.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.LedgerStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Load reads every delivered id. An empty table is an empty ledger.
func (s *PostgresStore) Load(ctx context.Context) (*domain.Ledger, error) {
	query, args, err := s.sb.Select("feed", "entry_id").From("posted_entries").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	ledger := domain.NewLedger()
	for rows.Next() {
		var feed string
		var id int
		if err := rows.Scan(&feed, &id); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		ledger.Add(domain.FeedKind(feed), id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}

	return ledger, nil
}

// Save upserts every recorded id; existing rows are left untouched.
func (s *PostgresStore) Save(ctx context.Context, ledger *domain.Ledger) error {
	for feed, ids := range ledger.Snapshot() {
		if len(ids) == 0 {
			continue
		}

		insert := s.sb.Insert("posted_entries").Columns("feed", "entry_id")
		for _, id := range ids {
			insert = insert.Values(feed, id)
		}
		query, args, err := insert.Suffix("ON CONFLICT (feed, entry_id) DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("build ledger insert: %w", err)
		}

		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save ledger for feed %s: %w", feed, err)
		}
	}
	return nil
}
