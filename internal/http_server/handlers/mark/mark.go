package mark

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
	"wishlist/internal/models"
)

type Request struct {
	Token  string `json:"token" validate:"required"`
	Gotten *bool  `json:"gotten" validate:"required"`
}

type Response struct {
	resp.Response
	Item *models.ItemView `json:"item,omitempty"`
}

type Marker interface {
	SetGotten(ctx context.Context, wishlistID, itemID uuid.UUID, token, sessionID string, gotten bool) (*models.WishlistItem, error)
}

// New claims or releases an item for the calling session. The share token
// travels in the body.
func New(log *slog.Logger, validate *validator.Validate, marker Marker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.mark.New"

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

		sessionID := session.ID(r.Context())

		item, err := marker.SetGotten(ctx, wishlistID, itemID, req.Token, sessionID, *req.Gotten)
		if err != nil {
			log.Info("item not marked", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		msg := "Unmarked item"
		if *req.Gotten {
			msg = "Marked item as gotten"
		}

		view := item.ShareView(sessionID)

		render.JSON(w, r, Response{
			Response: resp.OKMessage(msg),
			Item:     &view,
		})
	}
}
