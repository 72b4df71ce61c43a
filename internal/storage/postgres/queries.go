package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"wishlist/internal/models"
	"wishlist/internal/storage"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	itemWishlistFK = "wishlist_item_wishlist_id_fkey"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type queries struct {
	db dbtx
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

const wishlistColumns = `id, name, username, email, email_verified, owner_token, share_token`

const itemColumns = `id, wishlist_id, name, url, description, gotten, getter`

func scanWishlist(row pgx.Row) (*models.Wishlist, error) {
	var w models.Wishlist
	err := row.Scan(
		&w.ID,
		&w.Name,
		&w.Username,
		&w.Email,
		&w.EmailVerified,
		&w.OwnerToken,
		&w.ShareToken,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanItem(row pgx.Row) (models.WishlistItem, error) {
	var item models.WishlistItem
	err := row.Scan(
		&item.ID,
		&item.WishlistID,
		&item.Name,
		&item.URL,
		&item.Description,
		&item.Gotten,
		&item.Getter,
	)
	return item, err
}

func (q queries) Wishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	const op = "storage.postgres.Wishlist"

	query := `SELECT ` + wishlistColumns + ` FROM wishlist WHERE id = $1`

	w, err := scanWishlist(q.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrWishlistNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.Items, err = q.items(ctx, `WHERE wishlist_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return w, nil
}

func (q queries) items(ctx context.Context, where string, args ...any) ([]models.WishlistItem, error) {
	query := `SELECT ` + itemColumns + ` FROM wishlist_item ` + where + ` ORDER BY added, seq`

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.WishlistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (q queries) Item(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.WishlistItem, error) {
	const op = "storage.postgres.Item"

	query := `SELECT ` + itemColumns + ` FROM wishlist_item WHERE id = $1 AND wishlist_id = $2`

	item, err := scanItem(q.db.QueryRow(ctx, query, itemID, wishlistID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &item, nil
}

func (q queries) WishlistsByEmail(ctx context.Context, email string) ([]models.Wishlist, error) {
	const op = "storage.postgres.WishlistsByEmail"

	query := `SELECT ` + wishlistColumns + ` FROM wishlist WHERE lower(email) = lower($1) ORDER BY added`

	rows, err := q.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var lists []models.Wishlist
	for rows.Next() {
		w, err := scanWishlist(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lists = append(lists, *w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range lists {
		lists[i].Items, err = q.items(ctx, `WHERE wishlist_id = $1`, lists[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return lists, nil
}

func (q queries) AddWishlist(ctx context.Context, w *models.Wishlist) error {
	const op = "storage.postgres.AddWishlist"

	query := `
		INSERT INTO wishlist (id, name, username, email, email_verified, owner_token, share_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.db.Exec(ctx, query,
		w.ID, w.Name, w.Username, w.Email, w.EmailVerified, w.OwnerToken, w.ShareToken,
	)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeUniqueViolation {
			return storage.ErrWishlistExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(w.Items) > 0 {
		return q.AddItems(ctx, w.ID, w.Items)
	}

	return nil
}

func (q queries) AddItems(ctx context.Context, wishlistID uuid.UUID, items []models.WishlistItem) error {
	const op = "storage.postgres.AddItems"

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO wishlist_item (id, wishlist_id, name, url, description, gotten, getter)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, wishlistID, item.Name, item.URL, item.Description, item.Gotten, item.Getter)
	}

	br := q.db.SendBatch(ctx, batch)
	defer br.Close()

	for range items {
		if _, err := br.Exec(); err != nil {
			return mapItemWriteError(op, err)
		}
	}

	return nil
}

func mapItemWriteError(op string, err error) error {
	pgErr, ok := pgError(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case pgErr.Code == codeUniqueViolation:
		return storage.ErrItemExists
	case pgErr.Code == codeForeignKeyViolation && pgErr.ConstraintName == itemWishlistFK:
		return storage.ErrWishlistNotFound
	case pgErr.Code == codeForeignKeyViolation:
		return fmt.Errorf("%s: getter references unknown session: %w", op, storage.ErrSessionNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (q queries) UpdateItem(ctx context.Context, item *models.WishlistItem) error {
	const op = "storage.postgres.UpdateItem"

	query := `
		UPDATE wishlist_item
		SET name = $1, url = $2, description = $3, gotten = $4, getter = $5
		WHERE id = $6
	`

	_, err := q.db.Exec(ctx, query, item.Name, item.URL, item.Description, item.Gotten, item.Getter, item.ID)
	if err != nil {
		return mapItemWriteError(op, err)
	}

	return nil
}

func (q queries) RemoveItem(ctx context.Context, itemID, wishlistID uuid.UUID) (int64, error) {
	const op = "storage.postgres.RemoveItem"

	tag, err := q.db.Exec(ctx, `DELETE FROM wishlist_item WHERE id = $1 AND wishlist_id = $2`, itemID, wishlistID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (q queries) RemoveWishlist(ctx context.Context, id uuid.UUID) (int64, error) {
	const op = "storage.postgres.RemoveWishlist"

	tag, err := q.db.Exec(ctx, `DELETE FROM wishlist WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (q queries) VerifyOwnerToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	const op = "storage.postgres.VerifyOwnerToken"

	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM wishlist WHERE id = $1 AND owner_token = $2)`
	if err := q.db.QueryRow(ctx, query, wishlistID, token).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (q queries) VerifyShareToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	const op = "storage.postgres.VerifyShareToken"

	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM wishlist WHERE id = $1 AND share_token = $2)`
	if err := q.db.QueryRow(ctx, query, wishlistID, token).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (q queries) MarkEmailVerified(ctx context.Context, wishlistID uuid.UUID) error {
	const op = "storage.postgres.MarkEmailVerified"

	query := `UPDATE wishlist SET email_verified = TRUE WHERE id = $1 AND NOT email_verified`

	if _, err := q.db.Exec(ctx, query, wishlistID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (q queries) NewSession(ctx context.Context, id, ip string) error {
	const op = "storage.postgres.NewSession"

	_, err := q.db.Exec(ctx, `INSERT INTO wishlist_session (id, ip_address) VALUES ($1, $2)`, id, ip)
	if err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeUniqueViolation {
			return storage.ErrSessionExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (q queries) Session(ctx context.Context, id string) (*models.Session, error) {
	const op = "storage.postgres.Session"

	var s models.Session
	query := `SELECT id, ip_address, started FROM wishlist_session WHERE id = $1`

	err := q.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.IPAddress, &s.Started)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

func (q queries) SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error) {
	const op = "storage.postgres.SessionItems"

	items, err := q.items(ctx, `WHERE getter = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (q queries) RecordEmailSent(ctx context.Context, email, sessionID string) error {
	const op = "storage.postgres.RecordEmailSent"

	query := `INSERT INTO email_record (email, sender_session_id) VALUES ($1, $2)`

	if _, err := q.db.Exec(ctx, query, email, sessionID); err != nil {
		if pgErr, ok := pgError(err); ok && pgErr.Code == codeForeignKeyViolation {
			return fmt.Errorf("%s: sender references unknown session: %w", op, storage.ErrSessionNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (q queries) RecentEmailCount(ctx context.Context, email string, since time.Time) (int, error) {
	const op = "storage.postgres.RecentEmailCount"

	var count int
	query := `SELECT count(1) FROM email_record WHERE email = $1 AND sent_time >= $2`

	if err := q.db.QueryRow(ctx, query, email, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}
