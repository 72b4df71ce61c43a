package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"wishlist/internal/storage"
)

type Tx struct {
	queries
	tx pgx.Tx
}

func (t *Tx) Save(ctx context.Context) error {
	const op = "storage.postgres.Save"

	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return storage.ErrTxDone
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	const op = "storage.postgres.Rollback"

	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
