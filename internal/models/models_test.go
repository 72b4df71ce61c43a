package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist/internal/lib/errs"
)

func TestNewWishlist(t *testing.T) {
	t.Run("generates id and distinct tokens", func(t *testing.T) {
		w, err := NewWishlist(WishlistParams{Email: "owner@example.com"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, w.ID)
		assert.NotEmpty(t, w.OwnerToken)
		assert.NotEmpty(t, w.ShareToken)
		assert.NotEqual(t, w.OwnerToken, w.ShareToken)
		assert.Equal(t, DefaultWishlistName, w.Name)
		assert.False(t, w.EmailVerified)
	})

	t.Run("keeps supplied id and tokens", func(t *testing.T) {
		id := uuid.New()
		w, err := NewWishlist(WishlistParams{
			ID:         id.String(),
			Email:      "owner@example.com",
			OwnerToken: "T1",
			ShareToken: "T2",
		})
		require.NoError(t, err)

		assert.Equal(t, id, w.ID)
		assert.Equal(t, "T1", w.OwnerToken)
		assert.Equal(t, "T2", w.ShareToken)
	})

	t.Run("normalizes name and username", func(t *testing.T) {
		w, err := NewWishlist(WishlistParams{
			Name:     "  Birthday\x00 ",
			Username: "\tann ",
			Email:    "owner@example.com",
		})
		require.NoError(t, err)

		assert.Equal(t, "Birthday", w.Name)
		assert.Equal(t, "ann", w.Username)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := NewWishlist(WishlistParams{Name: "x"})
		assert.ErrorIs(t, err, errs.ErrMissingRequiredParameter)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewWishlist(WishlistParams{Email: "not-an-email"})
		assert.ErrorIs(t, err, errs.ErrInvalidEmail)
		assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := NewWishlist(WishlistParams{ID: "nope", Email: "owner@example.com"})
		assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	})
}

func TestNewWishlistItem(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		item, err := NewWishlistItem(ItemParams{Name: "Book", URL: "https://Shop.Example.com/b"})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, "https://shop.example.com/b", item.URL)
		assert.False(t, item.Gotten)
		assert.Nil(t, item.Getter)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := NewWishlistItem(ItemParams{Name: " \x00 "})
		assert.ErrorIs(t, err, errs.ErrMissingRequiredParameter)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewWishlistItem(ItemParams{Name: "Book", URL: "ftp://example.com"})
		assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	})

	t.Run("empty url is fine", func(t *testing.T) {
		item, err := NewWishlistItem(ItemParams{Name: "Book"})
		require.NoError(t, err)
		assert.Empty(t, item.URL)
	})
}

func TestClaimAndRelease(t *testing.T) {
	item, err := NewWishlistItem(ItemParams{Name: "Book"})
	require.NoError(t, err)

	item.Claim("S1")
	assert.True(t, item.HeldBy("S1"))
	assert.False(t, item.HeldBy("S2"))

	item.Claim("S2")
	assert.True(t, item.HeldBy("S2"))

	item.Release()
	assert.False(t, item.Gotten)
	assert.Nil(t, item.Getter)
}

func TestViewsHideGetter(t *testing.T) {
	w, err := NewWishlist(WishlistParams{Email: "owner@example.com"})
	require.NoError(t, err)

	item, err := NewWishlistItem(ItemParams{Name: "Book"})
	require.NoError(t, err)
	item.Claim("secret-session")
	w.Items = append(w.Items, *item)

	owner, err := json.Marshal(w.OwnerView())
	require.NoError(t, err)
	assert.NotContains(t, string(owner), "gotten")
	assert.NotContains(t, string(owner), "secret-session")

	share, err := json.Marshal(w.ShareView("other"))
	require.NoError(t, err)
	assert.Contains(t, string(share), `"gotten":true`)
	assert.Contains(t, string(share), `"gotten_by_me":false`)
	assert.NotContains(t, string(share), "secret-session")
	assert.NotContains(t, string(share), w.ShareToken)

	assert.NotNil(t, w.Item(item.ID))
	assert.Nil(t, w.Item(uuid.New()))
}
