package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/lib/random"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

// EnsureSession returns id when it names a known session. Otherwise a new
// session bound to ip is created and its id returned with created set.
func (s *Service) EnsureSession(ctx context.Context, id, ip string) (string, bool, error) {
	const op = "wishlist.EnsureSession"

	log := s.log.With(slog.String("op", op))

	if id != "" {
		known, err := s.knownSession(ctx, id)
		if err != nil {
			log.Error("failed to look up session", sl.Err(err))
			return "", false, domainErr(err)
		}
		if known {
			return id, false, nil
		}
	}

	newID, err := random.Token()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	err = s.inTx(ctx, func(tx storage.Tx) error {
		return tx.NewSession(ctx, newID, ip)
	})
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		return "", false, err
	}
	s.metrics.IncSessionCreated()

	if s.cache != nil {
		sess := models.Session{ID: newID, IPAddress: ip, Started: s.now()}
		if err := s.cache.CacheSession(ctx, sess); err != nil {
			log.Warn("failed to cache session", sl.Err(err))
		}
	}

	log.Debug("session created")

	return newID, true, nil
}

// knownSession reports whether the store has id. A cache entry for a
// session the store lost is dropped.
func (s *Service) knownSession(ctx context.Context, id string) (bool, error) {
	const op = "wishlist.knownSession"

	cached := false
	if s.cache != nil {
		if _, err := s.cache.CachedSession(ctx, id); err == nil {
			cached = true
		}
	}

	sess, err := s.store.Session(ctx, id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		if cached {
			if err := s.cache.ForgetSession(ctx, id); err != nil {
				s.log.Warn("failed to drop stale session", slog.String("op", op), sl.Err(err))
			}
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if s.cache != nil && !cached {
		if err := s.cache.CacheSession(ctx, *sess); err != nil {
			s.log.Warn("failed to cache session", slog.String("op", op), sl.Err(err))
		}
	}

	return true, nil
}
