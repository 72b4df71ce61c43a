package wishlist

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"wishlist/internal/lib/errs"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

type Access int

const (
	AccessNone Access = iota
	AccessShare
	AccessManage
)

func (a Access) String() string {
	switch a {
	case AccessShare:
		return "share"
	case AccessManage:
		return "manage"
	default:
		return "none"
	}
}

func tokenEqual(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// VerifyManageToken checks token against the owner token. The first success
// on an unverified wishlist marks its email verified, commits, and updates w.
func (s *Service) VerifyManageToken(ctx context.Context, w *models.Wishlist, token string) error {
	const op = "wishlist.VerifyManageToken"

	log := s.log.With(slog.String("op", op), slog.String("wishlist_id", w.ID.String()))

	ok := tokenEqual(w.OwnerToken, token)
	s.metrics.IncTokenCheck("manage", ok)
	if !ok {
		log.Debug("manage token rejected")
		return errs.New(errs.KindInvalidManageToken, "Invalid manage token")
	}

	if w.EmailVerified {
		return nil
	}

	err := s.inTx(ctx, func(tx storage.Tx) error {
		return tx.MarkEmailVerified(ctx, w.ID)
	})
	if err != nil {
		log.Error("failed to mark email verified", sl.Err(err))
		return err
	}

	w.EmailVerified = true
	log.Info("wishlist email verified")

	return nil
}

// VerifyShareToken checks token against the share token. A matching token
// is refused until the owner has verified the wishlist.
func (s *Service) VerifyShareToken(w *models.Wishlist, token string) error {
	ok := tokenEqual(w.ShareToken, token)
	s.metrics.IncTokenCheck("share", ok)
	if !ok {
		return errs.New(errs.KindInvalidShareToken, "Invalid share token")
	}

	if !w.EmailVerified {
		return errs.New(errs.KindUnverifiedWishlist,
			"This wishlist has not yet been verified. If you created this wishlist, please check your email for the activation link.")
	}

	return nil
}

// VerifyAnyToken accepts either token and has no side effects.
func (s *Service) VerifyAnyToken(w *models.Wishlist, token string) error {
	ok := tokenEqual(w.OwnerToken, token) || tokenEqual(w.ShareToken, token)
	s.metrics.IncTokenCheck("any", ok)
	if !ok {
		return errs.New(errs.KindInvalidToken, "Invalid token")
	}
	return nil
}

// Authorize resolves token to the access it grants on w, trying the manage
// token first so that its verification side effect applies.
func (s *Service) Authorize(ctx context.Context, w *models.Wishlist, token string) (Access, error) {
	err := s.VerifyManageToken(ctx, w, token)
	if err == nil {
		return AccessManage, nil
	}
	if !errors.Is(err, errs.ErrInvalidManageToken) {
		return AccessNone, err
	}

	err = s.VerifyShareToken(w, token)
	switch {
	case err == nil:
		return AccessShare, nil
	case errors.Is(err, errs.ErrUnverifiedWishlist):
		return AccessNone, err
	default:
		return AccessNone, errs.New(errs.KindInvalidToken, "Invalid token")
	}
}

// manage loads the wishlist and verifies the manage token.
func (s *Service) manage(ctx context.Context, wishlistID uuid.UUID, token string) (*models.Wishlist, error) {
	w, err := s.store.Wishlist(ctx, wishlistID)
	if err != nil {
		return nil, domainErr(err)
	}

	if err := s.VerifyManageToken(ctx, w, token); err != nil {
		return nil, err
	}

	return w, nil
}

// requireOwner repeats the manage token check inside tx against the stored
// row.
func requireOwner(ctx context.Context, tx storage.Tx, wishlistID uuid.UUID, token string) error {
	ok, err := tx.VerifyOwnerToken(ctx, wishlistID, token)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.KindInvalidManageToken, "Invalid manage token")
	}
	return nil
}
