package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"wishlist/internal/models"
	"wishlist/internal/storage"
	"wishlist/internal/storage/storagetest"
)

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &storagetest.StoreSuite{
		NewStore: func() storage.Store { return New() },
	})
}

func TestClockDrivesEmailWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))

	require.NoError(t, s.NewSession(ctx, "S1", "127.0.0.1"))
	require.NoError(t, s.RecordEmailSent(ctx, "a@b.com", "S1"))

	count, err := s.RecentEmailCount(ctx, "a@b.com", now)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "window start is inclusive")

	count, err = s.RecentEmailCount(ctx, "a@b.com", now.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTxBlocksOtherWriters(t *testing.T) {
	ctx := context.Background()
	s := New()

	w, err := models.NewWishlist(models.WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AddWishlist(ctx, w))

	var (
		wg   sync.WaitGroup
		seen error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, seen = s.Wishlist(ctx, w.ID)
	}()

	// The reader can only observe the state after the transaction ends.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, tx.Save(ctx))
	wg.Wait()

	assert.NoError(t, seen)
}

func TestFinishedTxRejectsUse(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Save(ctx))

	assert.ErrorIs(t, tx.Save(ctx), storage.ErrTxDone)
	_, err = tx.Session(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrTxDone)
}

func TestReturnedItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	w, err := models.NewWishlist(models.WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)
	item, err := models.NewWishlistItem(models.ItemParams{Name: "Book"})
	require.NoError(t, err)
	require.NoError(t, s.AddWishlist(ctx, w))
	require.NoError(t, s.AddItems(ctx, w.ID, []models.WishlistItem{*item}))
	require.NoError(t, s.NewSession(ctx, "S1", "127.0.0.1"))

	got, err := s.Item(ctx, w.ID, item.ID)
	require.NoError(t, err)
	got.Claim("S1")

	again, err := s.Item(ctx, w.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, again.Gotten)
}
