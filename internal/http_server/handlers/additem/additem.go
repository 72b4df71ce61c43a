package additem

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
	resp "wishlist/internal/lib/api/response"
	sl "wishlist/internal/lib/logger/sl"
	"wishlist/internal/models"
)

type Request struct {
	Name        string `json:"name" validate:"required,max=1024"`
	URL         string `json:"url" validate:"max=2048"`
	Description string `json:"description" validate:"max=4096"`
}

type Response struct {
	resp.Response
	Item *models.ItemView `json:"item,omitempty"`
}

type ItemAdder interface {
	AddItem(ctx context.Context, wishlistID uuid.UUID, token string, p models.ItemParams) (*models.WishlistItem, error)
}

func New(log *slog.Logger, validate *validator.Validate, adder ItemAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.additem.New"

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

		item, err := adder.AddItem(ctx, id, params.Token(r), models.ItemParams{
			Name:        req.Name,
			URL:         req.URL,
			Description: req.Description,
		})
		if err != nil {
			log.Warn("item not added", sl.Err(err))

			render.Status(r, resp.StatusOf(err))
			render.JSON(w, r, resp.ErrorOf(err))

			return
		}

		log.Info("item added", slog.String("item_id", item.ID.String()))

		view := item.OwnerView()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OKMessage("Added item"),
			Item:     &view,
		})
	}
}
