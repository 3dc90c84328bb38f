package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkarpov/storefront/internal/domain/models"
	"github.com/mkarpov/storefront/internal/storage"
)

// CatalogService определяет чтение каталога товаров.
type CatalogService interface {
	List(ctx context.Context, category string) ([]*models.Product, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

func (s *catalogService) List(ctx context.Context, category string) ([]*models.Product, error) {
	const op = "service.CatalogService.List"

	products, err := s.productRepo.ListProducts(ctx, category)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	return products, nil
}
