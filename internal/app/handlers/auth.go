package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkarpov/storefront/internal/service"
)

// RegisterRequest представляет структуру запроса регистрации с тегами валидации
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest представляет структуру запроса аутентификации
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse представляет структуру ответа с JWT-токеном
type TokenResponse struct {
	Token string `json:"token"`
}

// RefreshRequest представляет запрос обновления токена
type RefreshRequest struct {
	Token string `json:"token" validate:"required"`
}

// RegisterHandler обрабатывает запрос POST /api/register.
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
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

		if _, err := authService.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
			logger.Error("registration failed", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusCreated, MessageResponse{Message: "User registered successfully!"})
	}
}

// LoginHandler обрабатывает запрос POST /api/login.
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
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

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, TokenResponse{Token: token})
	}
}

// RefreshTokenHandler обрабатывает запрос POST /api/refresh-token.
func RefreshTokenHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RefreshTokenHandler"
		logger := log.With(slog.String("op", op))

		var req RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, logger, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Token == "" {
			writeError(w, logger, http.StatusUnauthorized, "token is required")
			return
		}

		token, err := authService.Refresh(r.Context(), req.Token)
		if err != nil {
			logger.Error("token refresh failed", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, TokenResponse{Token: token})
	}
}
