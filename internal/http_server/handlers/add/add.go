package add

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"wishlist/internal/http_server/middleware/session"
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
)

type Request struct {
	Name     string `json:"name" validate:"max=1024"`
	Username string `json:"username" validate:"max=1024"`
	Email    string `json:"email" validate:"required"`
}

type Response struct {
	resp.Response
	WishlistID uuid.UUID `json:"wishlist_id,omitempty"`
}

type WishlistCreator interface {
	CreateWishlist(ctx context.Context, p models.WishlistParams, sessionID string) (*models.Wishlist, error)
}

const sentMessage = "We have sent the link to manage your wishlist to your email.  Check your email and save the link you received."

func New(log *slog.Logger, validate *validator.Validate, creator WishlistCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.add.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		wl, err := creator.CreateWishlist(ctx, models.WishlistParams{
			Name:     req.Name,
			Username: req.Username,
			Email:    req.Email,
		}, session.ID(r.Context()))
		if err != nil {
			log.Warn("failed to create wishlist", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		log.Info("Wishlist created", slog.String("wishlist_id", wl.ID.String()))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response:   resp.OKMessage(sentMessage),
			WishlistID: wl.ID,
		})
	}
}
