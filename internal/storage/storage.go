package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/models"
)

var (
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("session already exists")
	ErrWishlistExists   = errors.New("wishlist already exists")
	ErrItemExists       = errors.New("item already exists")
	ErrTxDone           = errors.New("transaction already finished")
)

// Querier is the set of reads and writes available both on a Store and
// inside a Tx.
type Querier interface {
	Wishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error)
	Item(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.WishlistItem, error)
	WishlistsByEmail(ctx context.Context, email string) ([]models.Wishlist, error)

	AddWishlist(ctx context.Context, w *models.Wishlist) error
	AddItems(ctx context.Context, wishlistID uuid.UUID, items []models.WishlistItem) error
	UpdateItem(ctx context.Context, item *models.WishlistItem) error
	RemoveItem(ctx context.Context, itemID, wishlistID uuid.UUID) (int64, error)
	RemoveWishlist(ctx context.Context, id uuid.UUID) (int64, error)

	VerifyOwnerToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error)
	VerifyShareToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error)
	MarkEmailVerified(ctx context.Context, wishlistID uuid.UUID) error

	NewSession(ctx context.Context, id, ip string) error
	Session(ctx context.Context, id string) (*models.Session, error)
	SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error)

	RecordEmailSent(ctx context.Context, email, sessionID string) error
	RecentEmailCount(ctx context.Context, email string, since time.Time) (int, error)
}

// Tx is a unit of work. Nothing written through it is visible to other
// callers until Save; Rollback after Save does nothing.
type Tx interface {
	Querier
	Save(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Store interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close()
}
