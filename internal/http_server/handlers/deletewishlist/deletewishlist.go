package deletewishlist

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
)

type WishlistRemover interface {
	RemoveWishlist(ctx context.Context, wishlistID uuid.UUID, token string) error
}

func New(log *slog.Logger, remover WishlistRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.deletewishlist.New"

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

		if err := remover.RemoveWishlist(ctx, id, params.Token(r)); err != nil {
			log.Warn("wishlist not removed", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		log.Info("wishlist removed", slog.String("wishlist_id", id.String()))

		render.JSON(w, r, resp.OKMessage("Deleted wishlist"))
	}
}
