package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkarpov/storefront/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами и их позициями.
// Все мутации принимают *sql.Tx: границы транзакции задает сервисный слой,
// чтобы многошаговые workflow были атомарными целиком.
type OrderStorage interface {
	// CreateOrderTx вставляет строку заказа и возвращает новый id.
	CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// AddOrderItemTx вставляет одну позицию заказа.
	AddOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int) error
	// GetOrderByID возвращает шапку заказа с JOIN по владельцу.
	GetOrderByID(ctx context.Context, orderID int64) (*models.OrderDetail, error)
	// GetOrderItems возвращает позиции заказа с актуальными именем и ценой товара.
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// ListOrderIDsByUserID возвращает id всех заказов пользователя.
	ListOrderIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
	// ListOrderSummaries возвращает агрегированные строки для дашборда.
	ListOrderSummaries(ctx context.Context) ([]*models.OrderSummary, error)
	// ListOrderSummariesByUserID возвращает агрегированные строки заказов одного пользователя.
	ListOrderSummariesByUserID(ctx context.Context, userID int64) ([]*models.OrderSummary, error)
	// UpdateOrderAddressTx обновляет адресные поля заказа; 0 строк — ErrOrderNotFound.
	UpdateOrderAddressTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// DeleteOrderItemsTx удаляет все позиции заказа.
	DeleteOrderItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) error
	// DeleteOrderTx удаляет строку заказа; 0 строк — ErrOrderNotFound.
	DeleteOrderTx(ctx context.Context, tx *sql.Tx, orderID int64) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	var id int64
	query := `INSERT INTO orders (user_id, order_date, address, city, state, postcode, country)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := tx.QueryRowContext(ctx, query,
		order.UserID, order.OrderDate, order.Address, order.City, order.State, order.Postcode, order.Country,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) AddOrderItemTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, quantity int) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity) VALUES ($1, $2, $3)`
	_, err := tx.ExecContext(ctx, query, orderID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to add order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	detail := &models.OrderDetail{}
	query := `
		SELECT o.id, u.name, u.email, o.order_date, o.address, o.city, o.state, o.postcode, o.country
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.id = $1`
	row := r.db.QueryRowContext(ctx, query, orderID)
	if err := row.Scan(&detail.OrderID, &detail.CustomerName, &detail.CustomerEmail, &detail.OrderDate,
		&detail.Address, &detail.City, &detail.State, &detail.Postcode, &detail.Country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return detail, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.product_id, i.quantity, p.name, p.price
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.product_id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{OrderID: orderID}
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.ProductName, &item.ProductPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) ListOrderIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM orders WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepository) ListOrderSummaries(ctx context.Context) ([]*models.OrderSummary, error) {
	query := `
		SELECT o.id, u.name, u.email, string_agg(p.name, ','), SUM(p.price * i.quantity), o.order_date
		FROM orders o
		JOIN users u ON o.user_id = u.id
		JOIN order_items i ON o.id = i.order_id
		JOIN products p ON i.product_id = p.id
		GROUP BY o.id, u.name, u.email, o.order_date
		ORDER BY o.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.OrderSummary
	for rows.Next() {
		s := &models.OrderSummary{}
		if err := rows.Scan(&s.OrderID, &s.CustomerName, &s.CustomerEmail, &s.ProductNames, &s.TotalAmount, &s.OrderDate); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *orderRepository) ListOrderSummariesByUserID(ctx context.Context, userID int64) ([]*models.OrderSummary, error) {
	query := `
		SELECT o.id, u.name, u.email, string_agg(p.name, ','), SUM(p.price * i.quantity), o.order_date
		FROM orders o
		JOIN users u ON o.user_id = u.id
		JOIN order_items i ON o.id = i.order_id
		JOIN products p ON i.product_id = p.id
		WHERE o.user_id = $1
		GROUP BY o.id, u.name, u.email, o.order_date
		ORDER BY o.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*models.OrderSummary
	for rows.Next() {
		s := &models.OrderSummary{}
		if err := rows.Scan(&s.OrderID, &s.CustomerName, &s.CustomerEmail, &s.ProductNames, &s.TotalAmount, &s.OrderDate); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *orderRepository) UpdateOrderAddressTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `UPDATE orders SET address = $1, city = $2, state = $3, postcode = $4, country = $5 WHERE id = $6`
	res, err := tx.ExecContext(ctx, query, order.Address, order.City, order.State, order.Postcode, order.Country, order.ID)
	if err != nil {
		return fmt.Errorf("failed to update order address: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrderItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	return nil
}

func (r *orderRepository) DeleteOrderTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
