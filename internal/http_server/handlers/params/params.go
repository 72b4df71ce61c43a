// Package params reads route and query parameters shared by the wishlist
// handlers.
package params

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"wishlist/internal/lib/errs"
)

// WishlistID parses the {wishlistID} route parameter. An id that cannot
// name any wishlist is reported as not found.
func WishlistID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "wishlistID"))
	if err != nil {
		return uuid.Nil, errs.New(errs.KindWishlistNotFound, "Wishlist not found")
	}
	return id, nil
}

func ItemID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		return uuid.Nil, errs.New(errs.KindItemNotFound, "Item not found")
	}
	return id, nil
}

func Token(r *http.Request) string {
	return r.URL.Query().Get("token")
}
