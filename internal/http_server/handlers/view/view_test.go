package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist/internal/http_server/handlers/handlertest"
)

const pattern = "/{wishlistID}"

func TestView(t *testing.T) {
	env := handlertest.New(t)
	wl, _ := env.Seed(t, false)
	h := New(env.Log, env.Service)

	get := func(target string) *httptest.ResponseRecorder {
		return env.Serve(http.MethodGet, pattern, h, httptest.NewRequest(http.MethodGet, target, nil))
	}

	rec := get("/" + wl.ID.String() + "?token=" + handlertest.ShareToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, handlertest.Decode(t, rec)["error"], "not yet been verified")

	rec = get("/" + wl.ID.String() + "?token=" + handlertest.OwnerToken)
	require.Equal(t, http.StatusOK, rec.Code)
	list := handlertest.Decode(t, rec)["wishlist"].(map[string]any)
	assert.Equal(t, true, list["manage"])
	assert.Equal(t, handlertest.ShareToken, list["share_token"])

	rec = get("/" + wl.ID.String() + "?token=" + handlertest.ShareToken)
	require.Equal(t, http.StatusOK, rec.Code)
	list = handlertest.Decode(t, rec)["wishlist"].(map[string]any)
	assert.Equal(t, false, list["manage"])
	assert.NotContains(t, list, "share_token")

	rec = get("/" + wl.ID.String() + "?token=wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get("/" + uuid.NewString() + "?token=" + handlertest.OwnerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get("/not-a-uuid?token=" + handlertest.OwnerToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
