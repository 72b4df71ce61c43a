package add

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist/internal/http_server/handlers/handlertest"
	"wishlist/internal/mail"
)

func TestAdd(t *testing.T) {
	env := handlertest.New(t)
	h := New(env.Log, env.Validate, env.Service)

	rec := env.Serve(http.MethodPost, "/add", h, handlertest.JSONRequest(t, http.MethodPost, "/add", Request{
		Name:  "Birthday",
		Email: "ann@example.com",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := handlertest.Decode(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["wishlist_id"])

	sent := env.Mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, mail.SubjectVerify, sent[0].Subject)
	assert.Equal(t, "ann@example.com", sent[0].To)
}

func TestAddErrors(t *testing.T) {
	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing email", Request{Name: "x"}, http.StatusBadRequest},
		{"invalid email", Request{Email: "not-an-email"}, http.StatusBadRequest},
		{"bad json", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := handlertest.New(t)
			h := New(env.Log, env.Validate, env.Service)

			rec := env.Serve(http.MethodPost, "/add", h, handlertest.JSONRequest(t, http.MethodPost, "/add", tt.body))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "Error", handlertest.Decode(t, rec)["status"])
			assert.Empty(t, env.Mailer.Sent())
		})
	}
}

func TestAddRateLimited(t *testing.T) {
	env := handlertest.New(t)
	h := New(env.Log, env.Validate, env.Service)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := env.Serve(http.MethodPost, "/add", h, handlertest.JSONRequest(t, http.MethodPost, "/add", Request{
			Email: "ann@example.com",
		}))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestAddMailFailure(t *testing.T) {
	env := handlertest.New(t)
	env.Mailer.Err = errors.New("relay refused")
	h := New(env.Log, env.Validate, env.Service)

	rec := env.Serve(http.MethodPost, "/add", h, handlertest.JSONRequest(t, http.MethodPost, "/add", Request{
		Email: "ann@example.com",
	}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal error", handlertest.Decode(t, rec)["error"])
}
