package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkarpov/storefront/internal/domain/models"
	"github.com/mkarpov/storefront/internal/storage"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// лимит одновременных чтений деталей заказов при fan-out
const detailFetchLimit = 4

// Address — адрес доставки заказа, все поля обязательные.
type Address struct {
	Address  string
	City     string
	State    string
	Postcode string
	Country  string
}

// LineItem — позиция при редактировании заказа. Основной контракт — ProductID;
// ProductName оставлен как shim совместимости: при ProductID == 0 товар
// резолвится по точному имени.
type LineItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
}

// OrderService определяет workflow заказов: создание из корзины,
// чтение, редактирование и удаление. Каждая мутация — одна транзакция.
type OrderService interface {
	Create(ctx context.Context, userID int64, addr Address) (int64, error)
	GetDetail(ctx context.Context, orderID int64) (*models.OrderDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.OrderDetail, error)
	ListAll(ctx context.Context) ([]*models.OrderSummary, error)
	Update(ctx context.Context, orderID int64, addr Address, items []LineItem) error
	Delete(ctx context.Context, orderID int64) error
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// Create превращает корзину пользователя в заказ с позициями.
// Снимок корзины, вставка заказа и позиций и очистка корзины выполняются
// в одной транзакции: сбой на любом шаге откатывает всё.
// Пустая корзина отклоняется с ErrEmptyCart.
func (s *orderService) Create(ctx context.Context, userID int64, addr Address) (int64, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting order transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	// Снимок корзины читаем внутри транзакции: проверка на пустоту и
	// последующие вставки видят одно и то же состояние.
	items, err := s.cartRepo.GetItemsByUserIDTx(ctx, tx, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to get cart items", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to get cart items: %w", op, err)
	}

	if len(items) == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("cart is empty")
		return 0, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	order := &models.Order{
		UserID:    userID,
		OrderDate: time.Now().UTC(), // момент обработки, не клиентское время
		Address:   addr.Address,
		City:      addr.City,
		State:     addr.State,
		Postcode:  addr.Postcode,
		Country:   addr.Country,
	}
	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, item := range items {
		if err := s.orderRepo.AddOrderItemTx(ctx, tx, orderID, item.ProductID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to add order item", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to add order item: %w", op, err)
		}
	}

	if err := s.cartRepo.ClearCartTx(ctx, tx, userID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to clear cart", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed successfully", slog.Int64("orderID", orderID), slog.Int("items", len(items)))
	return orderID, nil
}

// GetDetail возвращает шапку заказа с данными владельца и позиции
// с актуальными именем и ценой товара.
func (s *orderService) GetDetail(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	const op = "service.OrderService.GetDetail"

	detail, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Error("failed to get order", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get order items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
	}
	detail.Products = items
	return detail, nil
}

// ListByUser возвращает детали всех заказов пользователя.
// Детали читаются ограниченным конкурентным fan-out: первая ошибка
// отменяет остальные чтения, и весь вызов завершается ошибкой.
func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]*models.OrderDetail, error) {
	const op = "service.OrderService.ListByUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	ids, err := s.orderRepo.ListOrderIDsByUserID(ctx, userID)
	if err != nil {
		logger.Error("failed to list order ids", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list order ids: %w", op, err)
	}

	details := make([]*models.OrderDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchLimit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			detail, err := s.GetDetail(gctx, id)
			if err != nil {
				return err
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("failed to fetch order details", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return details, nil
}

// ListAll возвращает агрегированные строки всех заказов для дашборда.
func (s *orderService) ListAll(ctx context.Context) ([]*models.OrderSummary, error) {
	const op = "service.OrderService.ListAll"

	summaries, err := s.orderRepo.ListOrderSummaries(ctx)
	if err != nil {
		s.log.Error("failed to list order summaries", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list order summaries: %w", op, err)
	}
	return summaries, nil
}

// Update заменяет адрес и весь список позиций заказа.
// Обновление адреса, удаление старых позиций, резолв товаров и вставка новых
// позиций идут в одной транзакции: нерезолвящийся товар или невалидное
// количество откатывают всё, прежний набор позиций остается нетронутым.
// Пустой заменяющий список отклоняется: заказ без позиций существовать не может.
func (s *orderService) Update(ctx context.Context, orderID int64, addr Address, items []LineItem) error {
	const op = "service.OrderService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	if len(items) == 0 {
		logger.Warn("empty item list")
		return fmt.Errorf("%s: %w", op, ErrEmptyOrder)
	}

	logger.Info("starting order update transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order := &models.Order{
		ID:       orderID,
		Address:  addr.Address,
		City:     addr.City,
		State:    addr.State,
		Postcode: addr.Postcode,
		Country:  addr.Country,
	}
	if err := s.orderRepo.UpdateOrderAddressTx(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to update order address", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update order address: %w", op, err)
	}

	if err := s.orderRepo.DeleteOrderItemsTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to delete order items", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order items: %w", op, err)
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Warn("invalid quantity", slog.Int("quantity", item.Quantity))
			return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
		}

		productID := item.ProductID
		if productID == 0 {
			product, err := s.productRepo.GetProductByNameTx(ctx, tx, item.ProductName)
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("transaction rollback failed", slog.Any("error", rbErr))
				}
				if errors.Is(err, storage.ErrProductNotFound) {
					logger.Warn("product not found", slog.String("name", item.ProductName))
					return fmt.Errorf("%s: product %q: %w", op, item.ProductName, err)
				}
				logger.Error("failed to resolve product", slog.Any("error", err))
				return fmt.Errorf("%s: failed to resolve product: %w", op, err)
			}
			productID = product.ID
		}

		if err := s.orderRepo.AddOrderItemTx(ctx, tx, orderID, productID, item.Quantity); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to add order item", slog.Any("error", err))
			return fmt.Errorf("%s: failed to add order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order updated successfully", slog.Int("items", len(items)))
	return nil
}

// Delete удаляет заказ вместе с позициями в одной транзакции:
// ни осиротевшая шапка, ни осиротевшие позиции невозможны.
func (s *orderService) Delete(ctx context.Context, orderID int64) error {
	const op = "service.OrderService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))
	logger.Info("starting order delete transaction")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.orderRepo.DeleteOrderItemsTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to delete order items", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order items: %w", op, err)
	}

	if err := s.orderRepo.DeleteOrderTx(ctx, tx, orderID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		if errors.Is(err, storage.ErrOrderNotFound) {
			logger.Warn("order not found")
			return fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to delete order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order deleted successfully")
	return nil
}
