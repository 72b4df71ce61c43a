//go:build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"wishlist/internal/lib/testutil/containers"
	"wishlist/internal/models"
	"wishlist/internal/storage"
	"wishlist/internal/storage/storagetest"
)

func setup(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pg := containers.NewPostgresContainer(t)
	require.NoError(t, Migrate(pg.DSN))
	// A second run must be a no-op.
	require.NoError(t, Migrate(pg.DSN))

	return pg.DSN
}

func newStore(t *testing.T, dsn string) *Storage {
	t.Helper()

	s, err := New(context.Background(), dsn)
	require.NoError(t, err)

	_, err = s.pool.Exec(context.Background(),
		`TRUNCATE email_record, wishlist_item, wishlist_session, wishlist`)
	require.NoError(t, err)

	return s
}

func TestPostgresStoreSuite(t *testing.T) {
	dsn := setup(t)

	suite.Run(t, &storagetest.StoreSuite{
		NewStore: func() storage.Store { return newStore(t, dsn) },
	})
}

func TestPostgresTxIsolation(t *testing.T) {
	dsn := setup(t)
	ctx := context.Background()
	s := newStore(t, dsn)
	defer s.Close()

	w, err := models.NewWishlist(models.WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.AddWishlist(ctx, w))

	_, err = s.Wishlist(ctx, w.ID)
	assert.ErrorIs(t, err, storage.ErrWishlistNotFound, "uncommitted write leaked")

	require.NoError(t, tx.Save(ctx))

	_, err = s.Wishlist(ctx, w.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, tx.Save(ctx), storage.ErrTxDone)
}

// TestConcurrentClaimsLastWriterWins shows that reservations have no
// compare-and-set: every claimant succeeds and one of them ends up holding it.
func TestConcurrentClaimsLastWriterWins(t *testing.T) {
	dsn := setup(t)
	ctx := context.Background()
	s := newStore(t, dsn)
	defer s.Close()

	w, err := models.NewWishlist(models.WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)
	item, err := models.NewWishlistItem(models.ItemParams{Name: "Book"})
	require.NoError(t, err)
	require.NoError(t, s.AddWishlist(ctx, w))
	require.NoError(t, s.AddItems(ctx, w.ID, []models.WishlistItem{*item}))

	const sessions = 20
	ids := make([]string, sessions)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, s.NewSession(ctx, ids[i], "127.0.0.1"))
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			claim := *item
			claim.Claim(id)
			if err := s.UpdateItem(ctx, &claim); err == nil {
				succeeded.Add(1)
			}
		}(id)
	}
	wg.Wait()

	assert.EqualValues(t, sessions, succeeded.Load())

	got, err := s.Item(ctx, w.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Getter)
	assert.Contains(t, ids, *got.Getter)
}

func TestSessionHoldingReservationCannotBeDeleted(t *testing.T) {
	dsn := setup(t)
	ctx := context.Background()
	s := newStore(t, dsn)
	defer s.Close()

	w, err := models.NewWishlist(models.WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)
	item, err := models.NewWishlistItem(models.ItemParams{Name: "Book"})
	require.NoError(t, err)
	require.NoError(t, s.AddWishlist(ctx, w))
	require.NoError(t, s.NewSession(ctx, "S1", "127.0.0.1"))

	item.Claim("S1")
	require.NoError(t, s.AddItems(ctx, w.ID, []models.WishlistItem{*item}))

	_, err = s.pool.Exec(ctx, `DELETE FROM wishlist_session WHERE id = $1`, "S1")
	assert.Error(t, err)
}
