package reservations

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"wishlist/internal/http_server/middleware/session"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
)

type Response struct {
	resp.Response
	Items []models.ItemView `json:"items"`
}

type SessionItemLister interface {
	SessionItems(ctx context.Context, sessionID string) ([]models.WishlistItem, error)
}

// New lists the items the calling browser session has claimed.
func New(log *slog.Logger, lister SessionItemLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reservations.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		sessionID := session.ID(r.Context())

		items, err := lister.SessionItems(ctx, sessionID)
		if err != nil {
			log.Error("failed to list reservations", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		views := make([]models.ItemView, 0, len(items))
		for i := range items {
			views = append(views, items[i].ShareView(sessionID))
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Items:    views,
		})
	}
}
