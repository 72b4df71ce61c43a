package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist/internal/models"
)

func newWishlist(t *testing.T) *models.Wishlist {
	t.Helper()

	w, err := models.NewWishlist(models.WishlistParams{
		Name:       "Birthday",
		Username:   "ann",
		Email:      "Ann@Example.com",
		OwnerToken: "owner+tok",
		ShareToken: "share-tok",
	})
	require.NoError(t, err)
	return w
}

func TestComposerVerify(t *testing.T) {
	w := newWishlist(t)
	c := NewComposer("noreply@example.com", "https://wish.example.com/lists/", "Wishes")

	msg, err := c.Verify(w)
	require.NoError(t, err)

	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "Ann@Example.com", msg.To)
	assert.Equal(t, SubjectVerify, msg.Subject)
	assert.Contains(t, msg.Body, "https://wish.example.com/lists/"+w.ID.String()+"?token=owner%2Btok")
	assert.Contains(t, msg.Body, `"Birthday"`)
	assert.NotContains(t, msg.Body, "share-tok")
}

func TestComposerShare(t *testing.T) {
	w := newWishlist(t)
	c := NewComposer("noreply@example.com", "http://localhost:8080/", "Wishes")

	msg, err := c.Share(w, "  Friend@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "friend@example.com", msg.To)
	assert.Equal(t, "ann has shared a wishlist with you!", msg.Subject)
	assert.Contains(t, msg.Body, "http://localhost:8080/"+w.ID.String()+"?token=share-tok")
	assert.NotContains(t, msg.Body, "owner%2Btok")
}

func TestComposerManage(t *testing.T) {
	first, second := newWishlist(t), newWishlist(t)
	second.Name = "Holidays"
	second.OwnerToken = "other"
	c := NewComposer("noreply@example.com", "http://localhost/", "Wishes")

	msg, err := c.Manage("ann@example.com", []models.Wishlist{*first, *second})
	require.NoError(t, err)

	assert.Equal(t, SubjectManage, msg.Subject)
	assert.Contains(t, msg.Body, "Birthday: http://localhost/"+first.ID.String())
	assert.Contains(t, msg.Body, "Holidays: http://localhost/"+second.ID.String()+"?token=other")

	empty, err := c.Manage("ann@example.com", nil)
	require.NoError(t, err)
	assert.Contains(t, empty.Body, "no wishlists")
}

func TestShareSubjectWithoutUsername(t *testing.T) {
	w := newWishlist(t)
	w.Username = ""
	assert.True(t, strings.HasPrefix(ShareSubject(w), "Someone"))
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage(Message{
		From:    "noreply@example.com",
		To:      "ann@example.com",
		Subject: SubjectVerify,
		Body:    "hello",
	})

	assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"ann@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{SubjectVerify}, m.GetHeader("Subject"))
}
