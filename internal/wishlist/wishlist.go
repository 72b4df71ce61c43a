// Package wishlist is the authorization and reservation engine. Every
// operation verifies the caller's token before touching storage and runs its
// writes in a single unit of work.
package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"wishlist/internal/lib/errs"
	"wishlist/internal/mail"
	"wishlist/internal/metrics"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

const (
	DefaultMailWindow = 5 * time.Minute
	DefaultMaxRecent  = 1
)

type Mailer interface {
	SendEmail(ctx context.Context, msg mail.Message) error
}

// SessionCache mirrors the session table. It is only a hint: the store
// stays the authority on which sessions exist.
type SessionCache interface {
	CachedSession(ctx context.Context, id string) (*models.Session, error)
	CacheSession(ctx context.Context, s models.Session) error
	ForgetSession(ctx context.Context, id string) error
}

type Service struct {
	log      *slog.Logger
	store    storage.Store
	mailer   Mailer
	composer *mail.Composer
	cache    SessionCache
	metrics  *metrics.Metrics
	now      func() time.Time

	mailWindow time.Duration
	maxRecent  int
}

type Option func(*Service)

func WithSessionCache(c SessionCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMailLimit allows at most maxRecent+1 emails to one address per window,
// so 0 allows one. A non-positive window or a negative maxRecent keeps the
// default.
func WithMailLimit(window time.Duration, maxRecent int) Option {
	return func(s *Service) {
		if window > 0 {
			s.mailWindow = window
		}
		if maxRecent >= 0 {
			s.maxRecent = maxRecent
		}
	}
}

func New(
	log *slog.Logger,
	store storage.Store,
	mailer Mailer,
	composer *mail.Composer,
	opts ...Option,
) *Service {
	s := &Service{
		log:        log,
		store:      store,
		mailer:     mailer,
		composer:   composer,
		now:        time.Now,
		mailWindow: DefaultMailWindow,
		maxRecent:  DefaultMaxRecent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// domainErr translates storage failures into the engine's error kinds.
// Errors that already carry a kind pass through unchanged.
func domainErr(err error) error {
	if err == nil {
		return nil
	}

	var e *errs.Error
	switch {
	case errors.As(err, &e):
		return err
	case errors.Is(err, storage.ErrWishlistNotFound):
		return errs.New(errs.KindWishlistNotFound, "Wishlist not found")
	case errors.Is(err, storage.ErrItemNotFound):
		return errs.New(errs.KindItemNotFound, "Item not found")
	default:
		return errs.Storage(err)
	}
}

// inTx runs fn in a unit of work and saves it when fn succeeds.
func (s *Service) inTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return errs.Storage(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return domainErr(err)
	}

	if err := tx.Save(ctx); err != nil {
		return errs.Storage(err)
	}
	return nil
}
