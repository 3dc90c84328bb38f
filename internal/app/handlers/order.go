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

// CreateOrderRequest представляет входной JSON оформления заказа.
type CreateOrderRequest struct {
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Postcode string `json:"postcode" validate:"required"`
	Country  string `json:"country" validate:"required"`
}

// CreateOrderResponse — ответ с id созданного заказа.
type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

// UpdateOrderRequest представляет входной JSON редактирования заказа:
// адресные поля плюс полный заменяющий список позиций.
type UpdateOrderRequest struct {
	Address  string             `json:"address" validate:"required"`
	City     string             `json:"city" validate:"required"`
	State    string             `json:"state" validate:"required"`
	Postcode string             `json:"postcode" validate:"required"`
	Country  string             `json:"country" validate:"required"`
	Products []OrderLineRequest `json:"products"`
}

// OrderLineRequest — одна позиция при редактировании.
// productId — основной контракт; name работает как shim совместимости.
type OrderLineRequest struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderHandler обрабатывает запрос POST /api/orders.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
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

		orderID, err := orderService.Create(r.Context(), claims.UserID, service.Address{
			Address:  req.Address,
			City:     req.City,
			State:    req.State,
			Postcode: req.Postcode,
			Country:  req.Country,
		})
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, CreateOrderResponse{Message: "Order placed successfully", OrderID: orderID})
	}
}

// GetOrderHandler обрабатывает запрос GET /api/order/{orderId}.
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			logger.Error("invalid order id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		detail, err := orderService.GetDetail(r.Context(), orderID)
		if err != nil {
			logger.Error("failed to get order", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, detail)
	}
}

// ListUserOrdersHandler обрабатывает запрос GET /api/user/{userId}/orders.
func ListUserOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUserOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
		if err != nil {
			logger.Error("invalid user id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid user id")
			return
		}

		details, err := orderService.ListByUser(r.Context(), userID)
		if err != nil {
			logger.Error("failed to list user orders", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, details)
	}
}

// ListOrdersHandler обрабатывает запрос GET /api/orders (дашборд).
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		summaries, err := orderService.ListAll(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, summaries)
	}
}

// UpdateOrderHandler обрабатывает запрос PUT /api/order/{orderId}.
func UpdateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			logger.Error("invalid order id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		var req UpdateOrderRequest
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

		items := make([]service.LineItem, 0, len(req.Products))
		for _, p := range req.Products {
			items = append(items, service.LineItem{
				ProductID:   p.ProductID,
				ProductName: p.Name,
				Quantity:    p.Quantity,
			})
		}

		addr := service.Address{
			Address:  req.Address,
			City:     req.City,
			State:    req.State,
			Postcode: req.Postcode,
			Country:  req.Country,
		}
		if err := orderService.Update(r.Context(), orderID, addr, items); err != nil {
			logger.Error("failed to update order", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "Order updated successfully"})
	}
}

// DeleteOrderHandler обрабатывает запрос DELETE /api/order/{orderId}.
func DeleteOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteOrderHandler"
		logger := log.With(slog.String("op", op))

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			logger.Error("invalid order id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid order id")
			return
		}

		if err := orderService.Delete(r.Context(), orderID); err != nil {
			logger.Error("failed to delete order", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "Order deleted successfully"})
	}
}
