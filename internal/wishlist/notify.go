package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/lib/errs"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/lib/validator"
	"wishlist/internal/mail"
	"wishlist/internal/storage"
)

// CheckMailLimit refuses address when it has already received more than the
// allowed number of emails in the trailing window. The check and the
// following send are not atomic: concurrent callers may both pass.
func (s *Service) CheckMailLimit(ctx context.Context, address string) error {
	const op = "wishlist.CheckMailLimit"

	if !validator.IsEmail(address) {
		return errs.InvalidEmail("Please enter a valid email address")
	}

	since := s.now().Add(-s.mailWindow)
	count, err := s.store.RecentEmailCount(ctx, mail.CanonicalAddress(address), since)
	if err != nil {
		s.log.Error("failed to count recent emails", slog.String("op", op), sl.Err(err))
		return domainErr(err)
	}

	if count > s.maxRecent {
		s.metrics.IncMailLimited()
		s.log.Info("mail limit reached", slog.String("op", op), slog.Int("count", count))
		return errs.New(errs.KindRateLimitExceeded,
			"Too many emails have been sent to that address recently. Please try again later.")
	}

	return nil
}

// LogEmail appends an audit record for an email sent to address on behalf
// of sessionID.
func (s *Service) LogEmail(ctx context.Context, address, sessionID string) error {
	return s.inTx(ctx, func(tx storage.Tx) error {
		return tx.RecordEmailSent(ctx, mail.CanonicalAddress(address), sessionID)
	})
}

// send runs the notification path: limit check, delivery, audit record.
func (s *Service) send(ctx context.Context, kind string, msg mail.Message, sessionID string) error {
	if err := s.CheckMailLimit(ctx, msg.To); err != nil {
		return err
	}
	return s.deliver(ctx, kind, msg, sessionID)
}

// deliver hands msg to the mailer and records it.
func (s *Service) deliver(ctx context.Context, kind string, msg mail.Message, sessionID string) error {
	const op = "wishlist.deliver"

	log := s.log.With(slog.String("op", op), slog.String("kind", kind))

	if err := s.mailer.SendEmail(ctx, msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.IncEmailSent(kind)

	if err := s.LogEmail(ctx, msg.To, sessionID); err != nil {
		log.Error("failed to record sent email", sl.Err(err))
		return err
	}

	log.Info("email sent")

	return nil
}

// ShareWishlist mails the share link to recipient. Only the owner may share.
// It returns the canonical recipient address.
func (s *Service) ShareWishlist(
	ctx context.Context,
	wishlistID uuid.UUID,
	token, recipient, sessionID string,
) (string, error) {
	const op = "wishlist.ShareWishlist"
	defer s.metrics.ObserveOperation(op, time.Now())

	if recipient == "" {
		return "", errs.MissingRequiredParameter("Must supply an email address")
	}

	w, err := s.manage(ctx, wishlistID, token)
	if err != nil {
		return "", err
	}

	if !validator.IsEmail(recipient) {
		return "", errs.InvalidEmail("Please enter a valid email address")
	}

	msg, err := s.composer.Share(w, recipient)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.send(ctx, "share", msg, sessionID); err != nil {
		return "", err
	}

	return msg.To, nil
}

// RecoverWishlists mails the manage links of every wishlist registered to
// address. Nothing is sent when there are none, and the caller is not told.
// The limit applies either way.
func (s *Service) RecoverWishlists(ctx context.Context, address, sessionID string) error {
	const op = "wishlist.RecoverWishlists"
	defer s.metrics.ObserveOperation(op, time.Now())

	log := s.log.With(slog.String("op", op))

	if address == "" {
		return errs.MissingRequiredParameter("Must supply an email address")
	}
	if err := s.CheckMailLimit(ctx, address); err != nil {
		return err
	}

	lists, err := s.store.WishlistsByEmail(ctx, mail.CanonicalAddress(address))
	if err != nil {
		log.Error("failed to look up wishlists", sl.Err(err))
		return domainErr(err)
	}
	if len(lists) == 0 {
		log.Debug("no wishlists for address")
		return nil
	}

	msg, err := s.composer.Manage(mail.CanonicalAddress(address), lists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return s.deliver(ctx, "manage", msg, sessionID)
}
