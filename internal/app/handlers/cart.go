package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkarpov/storefront/internal/jwt/jwtmiddleware"
	"github.com/mkarpov/storefront/internal/service"
)

// AddToCartRequest представляет входной JSON для добавления товара в корзину.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// AddToCartHandler обрабатывает запрос POST /api/cart.
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		var req AddToCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "validation error")
			return
		}

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := cartService.Add(r.Context(), claims.UserID, req.ProductID); err != nil {
			logger.Error("failed to add to cart", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, MessageResponse{Message: "Product added to cart."})
	}
}

// GetCartHandler обрабатывает запрос GET /api/cart.
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := cartService.List(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("failed to get cart", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, items)
	}
}

// RemoveFromCartHandler обрабатывает запрос DELETE /api/cart/{id}.
// Позиция удаляется только из корзины владельца: чужой id даёт 404.
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid cart item id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid cart item id")
			return
		}

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := cartService.Remove(r.Context(), claims.UserID, itemID); err != nil {
			logger.Error("failed to remove from cart", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "Product removed from cart"})
	}
}
