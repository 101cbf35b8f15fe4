package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yieldBridge/internal/model"
)

// Store provides Postgres persistence for audit events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutAuditBatch inserts audit events. Events are keyed by their uuid, so a
// replayed batch is a no-op rather than a duplicate.
func (s *Store) PutAuditBatch(events []model.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		var amount *string
		if event.Amount != nil {
			text := event.Amount.String()
			amount = &text
		}
		batch.Queue(`
			INSERT INTO audit_events (
				id, kind, at, account, amount, chain_selector, detail, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (id) DO NOTHING
		`,
			event.ID,
			string(event.Kind),
			event.At,
			event.Account,
			amount,
			int64(event.ChainSelector),
			event.Detail,
		)
	}

	br := s.pool.SendBatch(context.Background(), batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
