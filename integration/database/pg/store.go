package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/authshell/core/kv"
)

var _ kv.Store = (*Store)(nil)

// Querier is the subset of pgxpool.Pool and pgx.Tx the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a kv.Store over the kv_entries table created by Migrate.
// When the context carries a transaction (WithTx) the statement runs inside it.
type Store struct {
	db Querier
}

// NewStore wraps db, usually a *pgxpool.Pool.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

func (s *Store) querier(ctx context.Context) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = s.querier(ctx).QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if IsNotFoundError(err) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	_, err = s.querier(ctx).Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key, err := kv.ValidateKey(key)
	if err != nil {
		return err
	}
	_, err = s.querier(ctx).Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}
