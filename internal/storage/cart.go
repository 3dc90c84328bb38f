package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkarpov/storefront/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage описывает методы для работы с корзиной пользователя.
type CartStorage interface {
	// AddItem увеличивает количество существующей позиции (user, product) на 1
	// либо создает новую с quantity = 1. Upsert выполняется одним запросом,
	// поэтому конкурентные добавления одного товара схлопываются в одну строку.
	AddItem(ctx context.Context, userID, productID int64) error
	// GetItemsByUserID возвращает позиции корзины с JOIN по товарам.
	GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error)
	// GetItemsByUserIDTx читает снимок корзины внутри транзакции заказа.
	GetItemsByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error)
	// DeleteItem удаляет позицию только в рамках корзины владельца:
	// чужой id дает ErrCartItemNotFound, не раскрывая существование позиции.
	DeleteItem(ctx context.Context, userID, itemID int64) error
	// ClearCartTx очищает корзину пользователя внутри транзакции заказа.
	ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) AddItem(ctx context.Context, userID, productID int64) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, 1)
	          ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1`
	_, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) GetItemsByUserID(ctx context.Context, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

func (r *cartRepository) GetItemsByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartItem, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image
		FROM cart_items c
		JOIN products p ON c.product_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.id`
	rows, err := tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCartItems(rows)
}

func scanCartItems(rows *sql.Rows) ([]*models.CartItem, error) {
	var items []*models.CartItem
	for rows.Next() {
		item := &models.CartItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.ProductName, &item.ProductPrice, &item.ProductImage); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, userID, itemID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1 AND user_id = $2", itemID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
