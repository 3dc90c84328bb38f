package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkarpov/storefront/internal/domain/models"
	"github.com/mkarpov/storefront/internal/storage"
)

// CartService определяет операции с корзиной пользователя.
type CartService interface {
	Add(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID int64) error
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Add добавляет товар в корзину: существующая позиция инкрементируется, новая создается с quantity = 1.
func (s *cartService) Add(ctx context.Context, userID, productID int64) error {
	const op = "service.CartService.Add"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("product not found")
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	if err := s.cartRepo.AddItem(ctx, userID, productID); err != nil {
		logger.Error("failed to add cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to add cart item: %w", op, err)
	}

	logger.Info("cart item added")
	return nil
}

func (s *cartService) List(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	const op = "service.CartService.List"

	items, err := s.cartRepo.GetItemsByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}
	return items, nil
}

// Remove удаляет позицию корзины в рамках владельца: чужая позиция — ErrCartItemNotFound.
func (s *cartService) Remove(ctx context.Context, userID, itemID int64) error {
	const op = "service.CartService.Remove"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("itemID", itemID))

	if err := s.cartRepo.DeleteItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, storage.ErrCartItemNotFound) {
			logger.Warn("cart item not found")
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to delete cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete cart item: %w", op, err)
	}

	logger.Info("cart item removed")
	return nil
}
