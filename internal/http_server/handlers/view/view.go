package view

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
	Wishlist *models.WishlistView `json:"wishlist,omitempty"`
}

type Viewer interface {
	View(ctx context.Context, id uuid.UUID, token, sessionID string) (models.WishlistView, error)
}

// New shows the wishlist to the holder of either token. Owners get the
// share token and no reservation state.
func New(log *slog.Logger, viewer Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.view.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		v, err := load(r, viewer)
		if err != nil {
			log.Info("wishlist not shown", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Wishlist: &v,
		})
	}
}

func load(r *http.Request, viewer Viewer) (models.WishlistView, error) {
	id, err := params.WishlistID(r)
	if err != nil {
		return models.WishlistView{}, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	return viewer.View(ctx, id, params.Token(r), session.ID(r.Context()))
}
