package recovery

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"wishlist/internal/http_server/middleware/session"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
)

type Request struct {
	Email string `json:"email" validate:"required"`
}

type Recoverer interface {
	RecoverWishlists(ctx context.Context, address, sessionID string) error
}

const sentMessage = "If that address has any wishlists, a link to manage each of them is on its way."

// New mails the manage links for every wishlist registered to an address.
// The reply is the same whether or not any exist.
func New(log *slog.Logger, validate *validator.Validate, recoverer Recoverer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recovery.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		if err := recoverer.RecoverWishlists(ctx, req.Email, session.ID(r.Context())); err != nil {
			log.Warn("recovery not sent", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		render.JSON(w, r, resp.OKMessage(sentMessage))
	}
}
