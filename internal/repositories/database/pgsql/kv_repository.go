package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	portsrepo "github.com/openlancer/payments-backend/internal/core/ports/repositories"
)

type PgxKVRepository struct {
	BaseRepository
}

// newPgxKVRepository creates the key-value store backing view-state such as
// done-milestone overrides. Last write wins.
func newPgxKVRepository(pool PgxPool) portsrepo.KVStore {
	return &PgxKVRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.KVStore = (*PgxKVRepository)(nil)

func (r *PgxKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.Pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1;`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PgxKVRepository) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
	`
	if _, err := r.Pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}
