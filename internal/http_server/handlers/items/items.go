package items

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"wishlist/internal/http_server/handlers/params"
	"wishlist/internal/http_server/middleware/session"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
)

type Response struct {
	resp.Response
	Items []models.ItemView `json:"items"`
}

type Viewer interface {
	View(ctx context.Context, id uuid.UUID, token, sessionID string) (models.WishlistView, error)
}

func New(log *slog.Logger, viewer Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.items.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := params.WishlistID(r)
		if err != nil {
			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		v, err := viewer.View(ctx, id, params.Token(r), session.ID(r.Context()))
		if err != nil {
			log.Info("items not shown", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Items:    v.Items,
		})
	}
}
