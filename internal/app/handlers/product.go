package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mkarpov/storefront/internal/service"
)

// ListProductsHandler обрабатывает запрос GET /api/products с опциональным фильтром по категории.
func ListProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		category := r.URL.Query().Get("category")

		products, err := catalogService.List(r.Context(), category)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			mapServiceError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, products)
	}
}
