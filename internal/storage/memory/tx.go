package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/models"
	"wishlist/internal/storage"
)

// Tx owns the store lock until it is saved or rolled back.
type Tx struct {
	store   *Store
	journal journal
	done    bool
}

func (t *Tx) Save(ctx context.Context) error {
	if t.done {
		return storage.ErrTxDone
	}
	t.done = true
	t.journal.steps = nil
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.journal.undo()
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Wishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	if t.done {
		return nil, storage.ErrTxDone
	}
	return t.store.st.wishlist(id)
}

func (t *Tx) Item(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.WishlistItem, error) {
	if t.done {
		return nil, storage.ErrTxDone
	}
	return t.store.st.item(wishlistID, itemID)
}

func (t *Tx) WishlistsByEmail(ctx context.Context, email string) ([]models.Wishlist, error) {
	if t.done {
		return nil, storage.ErrTxDone
	}
	return t.store.st.wishlistsByEmail(email), nil
}

func (t *Tx) AddWishlist(ctx context.Context, w *models.Wishlist) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.addWishlist(&t.journal, w)
}

func (t *Tx) AddItems(ctx context.Context, wishlistID uuid.UUID, items []models.WishlistItem) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.addItems(&t.journal, wishlistID, items)
}

func (t *Tx) UpdateItem(ctx context.Context, item *models.WishlistItem) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.updateItem(&t.journal, item)
}

func (t *Tx) RemoveItem(ctx context.Context, itemID, wishlistID uuid.UUID) (int64, error) {
	if t.done {
		return 0, storage.ErrTxDone
	}
	return t.store.st.removeItem(&t.journal, itemID, wishlistID), nil
}

func (t *Tx) RemoveWishlist(ctx context.Context, id uuid.UUID) (int64, error) {
	if t.done {
		return 0, storage.ErrTxDone
	}
	return t.store.st.removeWishlist(&t.journal, id), nil
}

func (t *Tx) VerifyOwnerToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	if t.done {
		return false, storage.ErrTxDone
	}
	return t.store.st.verifyToken(wishlistID, token, true), nil
}

func (t *Tx) VerifyShareToken(ctx context.Context, wishlistID uuid.UUID, token string) (bool, error) {
	if t.done {
		return false, storage.ErrTxDone
	}
	return t.store.st.verifyToken(wishlistID, token, false), nil
}

func (t *Tx) MarkEmailVerified(ctx context.Context, wishlistID uuid.UUID) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.markEmailVerified(&t.journal, wishlistID)
}

func (t *Tx) NewSession(ctx context.Context, id, ip string) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.newSession(&t.journal, id, ip)
}

func (t *Tx) Session(ctx context.Context, id string) (*models.Session, error) {
	if t.done {
		return nil, storage.ErrTxDone
	}
	return t.store.st.session(id)
}

func (t *Tx) SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error) {
	if t.done {
		return nil, storage.ErrTxDone
	}
	return t.store.st.sessionItems(sessionID), nil
}

func (t *Tx) RecordEmailSent(ctx context.Context, email, sessionID string) error {
	if t.done {
		return storage.ErrTxDone
	}
	return t.store.st.recordEmailSent(&t.journal, email, sessionID)
}

func (t *Tx) RecentEmailCount(ctx context.Context, email string, since time.Time) (int, error) {
	if t.done {
		return 0, storage.ErrTxDone
	}
	return t.store.st.recentEmailCount(email, since), nil
}
