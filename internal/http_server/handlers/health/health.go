package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func New(log *slog.Logger, pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			log.Error("storage unreachable", slog.String("op", "handlers.health.New"), sl.Err(err))

			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, resp.Error("Storage unavailable"))

			return
		}

		render.JSON(w, r, resp.OK())
	}
}
