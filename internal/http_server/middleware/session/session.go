// Package session makes sure every request carries a stored browser session
// before it reaches a handler.
package session

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/lib/sessioncookie"
)

type Ensurer interface {
	EnsureSession(ctx context.Context, id, ip string) (string, bool, error)
}

type ctxKey struct{}

// ID returns the session id placed in ctx by the middleware.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func New(log *slog.Logger, ensurer Ensurer, secret string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.session"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			current := sessioncookie.Read(r, secret)

			id, created, err := ensurer.EnsureSession(r.Context(), current, clientIP(r))
			if err != nil {
				log.Error("failed to ensure session", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			if created {
				if err := sessioncookie.Write(w, id, secret, secure); err != nil {
					log.Error("failed to write session cookie", sl.Err(err))

					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, resp.Error("Internal error"))

					return
				}
				log.Debug("new session issued")
			}

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		}

		return http.HandlerFunc(fn)
	}
}

// clientIP is RemoteAddr without the port. RealIP has already rewritten it
// when the service runs behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
