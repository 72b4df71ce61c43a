package wishlist

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/lib/errs"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

// MarkItem claims or releases an item for sessionID. A claim replaces any
// earlier claim, including one held by another session. A release is only
// accepted from the session holding the claim.
func (s *Service) MarkItem(
	ctx context.Context,
	wishlistID, itemID uuid.UUID,
	sessionID string,
	gotten bool,
) (*models.WishlistItem, error) {
	const op = "wishlist.MarkItem"
	defer s.metrics.ObserveOperation(op, time.Now())

	log := s.log.With(
		slog.String("op", op),
		slog.String("wishlist_id", wishlistID.String()),
		slog.String("item_id", itemID.String()),
		slog.Bool("gotten", gotten),
	)

	var item *models.WishlistItem
	err := s.inTx(ctx, func(tx storage.Tx) error {
		var err error
		item, err = tx.Item(ctx, wishlistID, itemID)
		if err != nil {
			return err
		}

		if !gotten {
			if item.Getter == nil || *item.Getter != sessionID {
				return errs.New(errs.KindReservationNotHeld, "Cannot release a reservation you do not hold")
			}
			item.Release()
		} else {
			// TODO: refuse the claim when another session already holds it once
			// the UI can show who has it.
			item.Claim(sessionID)
		}

		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		if errs.KindOf(err) == errs.KindReservationNotHeld {
			s.metrics.IncReservation("refused")
			log.Info("release refused")
		} else {
			log.Error("failed to mark item", sl.Err(err))
		}
		return nil, err
	}

	if gotten {
		s.metrics.IncReservation("claim")
	} else {
		s.metrics.IncReservation("release")
	}
	log.Debug("item marked")

	return item, nil
}

// SetGotten is MarkItem behind a share token check.
func (s *Service) SetGotten(
	ctx context.Context,
	wishlistID, itemID uuid.UUID,
	token, sessionID string,
	gotten bool,
) (*models.WishlistItem, error) {
	w, err := s.store.Wishlist(ctx, wishlistID)
	if err != nil {
		return nil, domainErr(err)
	}

	if err := s.VerifyShareToken(w, token); err != nil {
		return nil, err
	}

	return s.MarkItem(ctx, wishlistID, itemID, sessionID, gotten)
}

// SessionItems lists the items currently claimed by sessionID.
func (s *Service) SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error) {
	const op = "wishlist.SessionItems"

	items, err := s.store.SessionItems(ctx, sessionID)
	if err != nil {
		s.log.Error("failed to list session items", slog.String("op", op), sl.Err(err))
		return nil, domainErr(err)
	}
	return items, nil
}
