// Package storagetest holds the behaviour every storage.Store must show.
// Each implementation runs StoreSuite against a fresh, empty store.
package storagetest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"wishlist/internal/lib/random"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

type StoreSuite struct {
	suite.Suite

	// NewStore returns an empty store; it is called before every test.
	NewStore func() storage.Store

	store storage.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *StoreSuite) TearDownTest() {
	s.store.Close()
}

func (s *StoreSuite) newWishlist(email string) *models.Wishlist {
	w, err := models.NewWishlist(models.WishlistParams{
		Name:     "Birthday",
		Username: "ann",
		Email:    email,
	})
	s.Require().NoError(err)
	return w
}

func (s *StoreSuite) newItem(name string) models.WishlistItem {
	item, err := models.NewWishlistItem(models.ItemParams{
		Name:        name,
		URL:         "https://shop.example.com/" + name,
		Description: "a " + name,
	})
	s.Require().NoError(err)
	return *item
}

func (s *StoreSuite) newSession() string {
	id, err := random.Token()
	s.Require().NoError(err)
	s.Require().NoError(s.store.NewSession(s.ctx, id, "127.0.0.1"))
	return id
}

func (s *StoreSuite) TestWishlistRoundTrip() {
	s.Run("add then get returns an equal wishlist", func() {
		w := s.newWishlist("owner@example.com")
		s.Require().NoError(s.store.AddWishlist(s.ctx, w))

		got, err := s.store.Wishlist(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Empty(got.Items)

		got.Items = nil
		s.Equal(w, got)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Wishlist(s.ctx, uuid.New())
		s.ErrorIs(err, storage.ErrWishlistNotFound)
	})

	s.Run("duplicate id", func() {
		w := s.newWishlist("owner@example.com")
		s.Require().NoError(s.store.AddWishlist(s.ctx, w))
		s.ErrorIs(s.store.AddWishlist(s.ctx, w), storage.ErrWishlistExists)
	})
}

func (s *StoreSuite) TestItems() {
	w := s.newWishlist("owner@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, w))

	first, second, third := s.newItem("first"), s.newItem("second"), s.newItem("third")
	s.Require().NoError(s.store.AddItems(s.ctx, w.ID, []models.WishlistItem{first, second}))
	s.Require().NoError(s.store.AddItems(s.ctx, w.ID, []models.WishlistItem{third}))

	s.Run("item round trip", func() {
		got, err := s.store.Item(s.ctx, w.ID, first.ID)
		s.Require().NoError(err)

		want := first
		want.WishlistID = w.ID
		s.Equal(&want, got)
	})

	s.Run("items load in insertion order", func() {
		got, err := s.store.Wishlist(s.ctx, w.ID)
		s.Require().NoError(err)
		s.Require().Len(got.Items, 3)
		s.Equal(first.ID, got.Items[0].ID)
		s.Equal(second.ID, got.Items[1].ID)
		s.Equal(third.ID, got.Items[2].ID)
	})

	s.Run("item under another wishlist is not found", func() {
		_, err := s.store.Item(s.ctx, uuid.New(), first.ID)
		s.ErrorIs(err, storage.ErrItemNotFound)
	})

	s.Run("items need an existing wishlist", func() {
		err := s.store.AddItems(s.ctx, uuid.New(), []models.WishlistItem{s.newItem("orphan")})
		s.ErrorIs(err, storage.ErrWishlistNotFound)
	})

	s.Run("remove item", func() {
		n, err := s.store.RemoveItem(s.ctx, second.ID, w.ID)
		s.Require().NoError(err)
		s.EqualValues(1, n)

		_, err = s.store.Item(s.ctx, w.ID, second.ID)
		s.ErrorIs(err, storage.ErrItemNotFound)

		n, err = s.store.RemoveItem(s.ctx, second.ID, w.ID)
		s.Require().NoError(err)
		s.EqualValues(0, n)
	})

	s.Run("remove item needs the owning wishlist", func() {
		n, err := s.store.RemoveItem(s.ctx, first.ID, uuid.New())
		s.Require().NoError(err)
		s.EqualValues(0, n)
	})
}

func (s *StoreSuite) TestUpdateItemGetter() {
	w := s.newWishlist("owner@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, w))
	item := s.newItem("book")
	s.Require().NoError(s.store.AddItems(s.ctx, w.ID, []models.WishlistItem{item}))

	s.Run("claim and release", func() {
		sess := s.newSession()

		item.Claim(sess)
		s.Require().NoError(s.store.UpdateItem(s.ctx, &item))

		got, err := s.store.Item(s.ctx, w.ID, item.ID)
		s.Require().NoError(err)
		s.True(got.HeldBy(sess))

		reserved, err := s.store.SessionItems(s.ctx, sess)
		s.Require().NoError(err)
		s.Require().Len(reserved, 1)
		s.Equal(item.ID, reserved[0].ID)

		item.Release()
		s.Require().NoError(s.store.UpdateItem(s.ctx, &item))

		got, err = s.store.Item(s.ctx, w.ID, item.ID)
		s.Require().NoError(err)
		s.False(got.Gotten)
		s.Nil(got.Getter)
	})

	s.Run("getter must be a known session", func() {
		item.Claim("no-such-session")
		s.Error(s.store.UpdateItem(s.ctx, &item))
		item.Release()
	})
}

func (s *StoreSuite) TestRemoveWishlistCascades() {
	w := s.newWishlist("owner@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, w))
	items := []models.WishlistItem{s.newItem("a"), s.newItem("b")}
	s.Require().NoError(s.store.AddItems(s.ctx, w.ID, items))

	n, err := s.store.RemoveWishlist(s.ctx, w.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	_, err = s.store.Wishlist(s.ctx, w.ID)
	s.ErrorIs(err, storage.ErrWishlistNotFound)

	for _, item := range items {
		_, err := s.store.Item(s.ctx, w.ID, item.ID)
		s.ErrorIs(err, storage.ErrItemNotFound)
	}
}

func (s *StoreSuite) TestTokens() {
	w := s.newWishlist("owner@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, w))

	ok, err := s.store.VerifyOwnerToken(s.ctx, w.ID, w.OwnerToken)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.VerifyOwnerToken(s.ctx, w.ID, w.ShareToken)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.VerifyShareToken(s.ctx, w.ID, w.ShareToken)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.VerifyShareToken(s.ctx, uuid.New(), w.ShareToken)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StoreSuite) TestMarkEmailVerifiedIsIdempotent() {
	w := s.newWishlist("owner@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, w))

	s.Require().NoError(s.store.MarkEmailVerified(s.ctx, w.ID))
	s.Require().NoError(s.store.MarkEmailVerified(s.ctx, w.ID))

	got, err := s.store.Wishlist(s.ctx, w.ID)
	s.Require().NoError(err)
	s.True(got.EmailVerified)
}

func (s *StoreSuite) TestSessions() {
	s.Run("new and get", func() {
		id := s.newSession()

		sess, err := s.store.Session(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(id, sess.ID)
		s.Equal("127.0.0.1", sess.IPAddress)
		s.False(sess.Started.IsZero())
	})

	s.Run("unknown", func() {
		_, err := s.store.Session(s.ctx, "missing")
		s.ErrorIs(err, storage.ErrSessionNotFound)
	})

	s.Run("duplicate", func() {
		id := s.newSession()
		s.ErrorIs(s.store.NewSession(s.ctx, id, "10.0.0.1"), storage.ErrSessionExists)
	})
}

func (s *StoreSuite) TestEmailLog() {
	sess := s.newSession()
	since := time.Now().Add(-5 * time.Minute)

	count, err := s.store.RecentEmailCount(s.ctx, "a@b.com", since)
	s.Require().NoError(err)
	s.Zero(count)

	s.Require().NoError(s.store.RecordEmailSent(s.ctx, "a@b.com", sess))
	s.Require().NoError(s.store.RecordEmailSent(s.ctx, "a@b.com", sess))
	s.Require().NoError(s.store.RecordEmailSent(s.ctx, "other@b.com", sess))

	count, err = s.store.RecentEmailCount(s.ctx, "a@b.com", since)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.RecentEmailCount(s.ctx, "a@b.com", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Zero(count)

	s.Error(s.store.RecordEmailSent(s.ctx, "a@b.com", "no-such-session"))
}

func (s *StoreSuite) TestWishlistsByEmail() {
	mine := s.newWishlist("Owner@Example.com")
	other := s.newWishlist("someone@example.com")
	s.Require().NoError(s.store.AddWishlist(s.ctx, mine))
	s.Require().NoError(s.store.AddWishlist(s.ctx, other))

	got, err := s.store.WishlistsByEmail(s.ctx, "owner@example.com")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(mine.ID, got[0].ID)
}

func (s *StoreSuite) TestTransactions() {
	s.Run("rollback discards writes", func() {
		w := s.newWishlist("owner@example.com")

		tx, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(tx.AddWishlist(s.ctx, w))

		_, err = tx.Wishlist(s.ctx, w.ID)
		s.Require().NoError(err)

		s.Require().NoError(tx.Rollback(s.ctx))

		_, err = s.store.Wishlist(s.ctx, w.ID)
		s.ErrorIs(err, storage.ErrWishlistNotFound)
	})

	s.Run("save publishes writes and rollback after save is a no-op", func() {
		w := s.newWishlist("owner@example.com")
		item := s.newItem("book")

		tx, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)
		s.Require().NoError(tx.AddWishlist(s.ctx, w))
		s.Require().NoError(tx.AddItems(s.ctx, w.ID, []models.WishlistItem{item}))
		s.Require().NoError(tx.MarkEmailVerified(s.ctx, w.ID))
		s.Require().NoError(tx.Save(s.ctx))
		s.Require().NoError(tx.Rollback(s.ctx))

		got, err := s.store.Wishlist(s.ctx, w.ID)
		s.Require().NoError(err)
		s.True(got.EmailVerified)
		s.Len(got.Items, 1)
	})

	s.Run("rollback restores updated and removed rows", func() {
		w := s.newWishlist("owner@example.com")
		item := s.newItem("book")
		s.Require().NoError(s.store.AddWishlist(s.ctx, w))
		s.Require().NoError(s.store.AddItems(s.ctx, w.ID, []models.WishlistItem{item}))
		sess := s.newSession()

		tx, err := s.store.Begin(s.ctx)
		s.Require().NoError(err)

		item.Claim(sess)
		s.Require().NoError(tx.UpdateItem(s.ctx, &item))
		s.Require().NoError(tx.RecordEmailSent(s.ctx, "a@b.com", sess))
		n, err := tx.RemoveWishlist(s.ctx, w.ID)
		s.Require().NoError(err)
		s.EqualValues(1, n)
		s.Require().NoError(tx.Rollback(s.ctx))

		got, err := s.store.Item(s.ctx, w.ID, item.ID)
		s.Require().NoError(err)
		s.False(got.Gotten)

		count, err := s.store.RecentEmailCount(s.ctx, "a@b.com", time.Now().Add(-time.Hour))
		s.Require().NoError(err)
		s.Zero(count)
	})
}
