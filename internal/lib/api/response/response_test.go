package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"wishlist/internal/lib/errs"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.MissingRequiredParameter("x"), http.StatusBadRequest},
		{errs.InvalidParameter("x"), http.StatusBadRequest},
		{errs.InvalidEmail("x"), http.StatusBadRequest},
		{errs.New(errs.KindInvalidToken, "x"), http.StatusUnauthorized},
		{errs.New(errs.KindInvalidManageToken, "x"), http.StatusUnauthorized},
		{errs.New(errs.KindInvalidShareToken, "x"), http.StatusUnauthorized},
		{errs.New(errs.KindUnverifiedWishlist, "x"), http.StatusForbidden},
		{errs.New(errs.KindWishlistNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.KindItemNotFound, "x"), http.StatusNotFound},
		{errs.New(errs.KindReservationNotHeld, "x"), http.StatusConflict},
		{errs.New(errs.KindRateLimitExceeded, "x"), http.StatusTooManyRequests},
		{errs.Storage(errors.New("x")), http.StatusInternalServerError},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(errs.KindOf(tt.err)), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorOf(t *testing.T) {
	got := ErrorOf(errs.InvalidParameter(`bad <script>`))
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "bad &lt;script&gt;", got.Error)

	got = ErrorOf(errs.Storage(errors.New("pq: password authentication failed")))
	assert.Equal(t, "Internal error", got.Error)
}
