package deleteitem

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"wishlist/internal/http_server/handlers/params"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
)

type ItemRemover interface {
	RemoveItem(ctx context.Context, wishlistID, itemID uuid.UUID, token string) (*models.WishlistItem, error)
}

func New(log *slog.Logger, remover ItemRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deleteitem.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		wishlistID, err := params.WishlistID(r)
		if err != nil {
			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}
		itemID, err := params.ItemID(r)
		if err != nil {
			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		removed, err := remover.RemoveItem(ctx, wishlistID, itemID, params.Token(r))
		if err != nil {
			log.Warn("item not removed", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		if removed == nil {
			render.JSON(w, r, resp.OKMessage("Nothing deleted"))

			return
		}

		log.Info("item removed", slog.String("item_id", itemID.String()))

		render.JSON(w, r, resp.OKMessage("Deleted item: "+removed.Name))
	}
}
