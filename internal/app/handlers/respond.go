package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mkarpov/storefront/internal/service"
	"github.com/mkarpov/storefront/internal/storage"
)

var validate = validator.New()

// ErrorResponse — единый формат тела ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse — единый формат тела успешного ответа без данных.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// mapServiceError переводит доменные ошибки в HTTP-статусы.
// Ошибки хранилища не детализируются наружу — отдаётся opaque 500.
func mapServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrCartItemNotFound):
		writeError(w, log, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrEmailTaken),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, log, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, log, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrSelfAdminChange):
		writeError(w, log, http.StatusForbidden, "cannot modify own admin status")
	default:
		writeError(w, log, http.StatusInternalServerError, "internal server error")
	}
}
