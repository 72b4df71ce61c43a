package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

// CreateWishlist stores a new wishlist and mails the manage link to its
// owner. The stored wishlist is returned even when the mail step fails.
func (s *Service) CreateWishlist(ctx context.Context, p models.WishlistParams, sessionID string) (*models.Wishlist, error) {
	const op = "wishlist.CreateWishlist"
	defer s.metrics.ObserveOperation(op, time.Now())

	log := s.log.With(slog.String("op", op))

	w, err := models.NewWishlist(p)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx storage.Tx) error {
		return tx.AddWishlist(ctx, w)
	})
	if err != nil {
		log.Error("failed to store wishlist", sl.Err(err))
		return nil, err
	}
	s.metrics.IncWishlistCreated()

	log = log.With(slog.String("wishlist_id", w.ID.String()))
	log.Info("wishlist created")

	msg, err := s.composer.Verify(w)
	if err != nil {
		return w, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.send(ctx, "verify", msg, sessionID); err != nil {
		log.Warn("verification email not sent", sl.Err(err))
		return w, err
	}

	return w, nil
}

func (s *Service) GetWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	w, err := s.store.Wishlist(ctx, id)
	if err != nil {
		return nil, domainErr(err)
	}
	return w, nil
}

// View loads the wishlist and renders it for whoever token belongs to.
func (s *Service) View(ctx context.Context, id uuid.UUID, token, sessionID string) (models.WishlistView, error) {
	w, err := s.GetWishlist(ctx, id)
	if err != nil {
		return models.WishlistView{}, err
	}

	access, err := s.Authorize(ctx, w, token)
	if err != nil {
		return models.WishlistView{}, err
	}

	if access == AccessManage {
		return w.OwnerView(), nil
	}
	return w.ShareView(sessionID), nil
}

func (s *Service) AddItem(ctx context.Context, wishlistID uuid.UUID, token string, p models.ItemParams) (*models.WishlistItem, error) {
	const op = "wishlist.AddItem"
	defer s.metrics.ObserveOperation(op, time.Now())

	if _, err := s.manage(ctx, wishlistID, token); err != nil {
		return nil, err
	}

	p.WishlistID = wishlistID
	item, err := models.NewWishlistItem(p)
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx storage.Tx) error {
		if err := requireOwner(ctx, tx, wishlistID, token); err != nil {
			return err
		}
		return tx.AddItems(ctx, wishlistID, []models.WishlistItem{*item})
	})
	if err != nil {
		s.log.Error("failed to add item", slog.String("op", op), sl.Err(err))
		return nil, err
	}

	return item, nil
}

// RemoveItem deletes an item and returns it, or nil when there was nothing
// to delete.
func (s *Service) RemoveItem(ctx context.Context, wishlistID, itemID uuid.UUID, token string) (*models.WishlistItem, error) {
	const op = "wishlist.RemoveItem"
	defer s.metrics.ObserveOperation(op, time.Now())

	if _, err := s.manage(ctx, wishlistID, token); err != nil {
		return nil, err
	}

	var removed *models.WishlistItem
	err := s.inTx(ctx, func(tx storage.Tx) error {
		if err := requireOwner(ctx, tx, wishlistID, token); err != nil {
			return err
		}

		item, err := tx.Item(ctx, wishlistID, itemID)
		if errors.Is(err, storage.ErrItemNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		n, err := tx.RemoveItem(ctx, itemID, wishlistID)
		if err != nil {
			return err
		}
		if n > 0 {
			removed = item
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to remove item", slog.String("op", op), sl.Err(err))
		return nil, err
	}

	return removed, nil
}

// RemoveWishlist deletes the wishlist and, with it, all of its items.
func (s *Service) RemoveWishlist(ctx context.Context, wishlistID uuid.UUID, token string) error {
	const op = "wishlist.RemoveWishlist"
	defer s.metrics.ObserveOperation(op, time.Now())

	if _, err := s.manage(ctx, wishlistID, token); err != nil {
		return err
	}

	err := s.inTx(ctx, func(tx storage.Tx) error {
		if err := requireOwner(ctx, tx, wishlistID, token); err != nil {
			return err
		}

		n, err := tx.RemoveWishlist(ctx, wishlistID)
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrWishlistNotFound
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to remove wishlist", slog.String("op", op), sl.Err(err))
		return err
	}

	s.log.Info("wishlist removed", slog.String("op", op), slog.String("wishlist_id", wishlistID.String()))

	return nil
}
