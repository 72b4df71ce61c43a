package share

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"wishlist/internal/http_server/handlers/params"
	"wishlist/internal/http_server/middleware/session"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
)

type Request struct {
	Email string `json:"email" validate:"required"`
}

type Sharer interface {
	ShareWishlist(ctx context.Context, wishlistID uuid.UUID, token, recipient, sessionID string) (string, error)
}

// New mails the share link to the address in the body. Only the owner may
// share a wishlist.
func New(log *slog.Logger, validate *validator.Validate, sharer Sharer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.share.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		to, err := sharer.ShareWishlist(ctx, id, params.Token(r), req.Email, session.ID(r.Context()))
		if err != nil {
			log.Warn("wishlist not shared", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		log.Info("share link sent", slog.String("wishlist_id", id.String()))

		render.JSON(w, r, resp.OKMessage("Sent share link to "+to))
	}
}
