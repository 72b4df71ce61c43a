// Package handlertest wires handlers to a real engine over the in-memory
// store for HTTP tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wishlist/internal/http_server/middleware/session"
	"wishlist/internal/mail"
	"wishlist/internal/models"
	"wishlist/internal/storage/memory"
	"wishlist/internal/wishlist"
)

const (
	OwnerToken = "owner-token"
	ShareToken = "share-token"
)

// Mailer records messages instead of sending them.
type Mailer struct {
	mu   sync.Mutex
	sent []mail.Message
	Err  error
}

func (m *Mailer) SendEmail(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *Mailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type Env struct {
	Log      *slog.Logger
	Validate *validator.Validate
	Store    *memory.Store
	Mailer   *Mailer
	Service  *wishlist.Service
	Session  string
}

func New(t *testing.T) *Env {
	t.Helper()

	e := &Env{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Validate: validator.New(),
		Store:    memory.New(),
		Mailer:   &Mailer{},
	}
	composer := mail.NewComposer("wishlist@example.com", "https://wishes.example.com/", "Wishlist")
	e.Service = wishlist.New(e.Log, e.Store, e.Mailer, composer)

	id, _, err := e.Service.EnsureSession(context.Background(), "", "127.0.0.1")
	require.NoError(t, err)
	e.Session = id

	return e
}

// Seed stores a wishlist with the fixed tokens and one item.
func (e *Env) Seed(t *testing.T, verified bool) (*models.Wishlist, uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	w, err := models.NewWishlist(models.WishlistParams{
		Name:          "Birthday",
		Username:      "ann",
		Email:         "ann@example.com",
		EmailVerified: verified,
		OwnerToken:    OwnerToken,
		ShareToken:    ShareToken,
	})
	require.NoError(t, err)
	require.NoError(t, e.Store.AddWishlist(ctx, w))

	item, err := models.NewWishlistItem(models.ItemParams{Name: "Kettle", WishlistID: w.ID})
	require.NoError(t, err)
	require.NoError(t, e.Store.AddItems(ctx, w.ID, []models.WishlistItem{*item}))

	return w, item.ID
}

// Serve routes r to h mounted at pattern, with the env's session attached.
func (e *Env) Serve(method, pattern string, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithID(r.Context(), e.Session)))
		})
	})
	router.Method(method, pattern, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(method, target, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// Decode unmarshals the recorded body into a map.
func Decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
