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

// SetAdminRequest представляет входной JSON смены флага админа.
type SetAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// MeHandler обрабатывает запрос GET /api/user — профиль текущего пользователя.
func MeHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MeHandler"
		logger := log.With(slog.String("op", op))

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := userService.GetByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("failed to get user", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, user)
	}
}

// GetUserHandler обрабатывает запрос GET /api/user/{id} — профиль со сводками заказов.
func GetUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid user id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid user id")
			return
		}

		user, err := userService.GetWithOrders(r.Context(), userID)
		if err != nil {
			logger.Error("failed to get user", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, user)
	}
}

// ListUsersHandler обрабатывает запрос GET /api/users.
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userService.List(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, users)
	}
}

// SetAdminHandler обрабатывает запрос PATCH /api/user/{id}/admin.
// Смена собственного флага запрещена (403).
func SetAdminHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SetAdminHandler"
		logger := log.With(slog.String("op", op))

		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Error("invalid user id", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid user id")
			return
		}

		var req SetAdminRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}

		claims, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("claims not found in context")
			writeError(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := userService.SetAdmin(r.Context(), claims.UserID, targetID, req.IsAdmin); err != nil {
			logger.Error("failed to set admin status", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DashboardHandler обрабатывает запрос GET /api/dashboard.
func DashboardHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, http.StatusOK, MessageResponse{Message: "Welcome to the admin dashboard!"})
	}
}
