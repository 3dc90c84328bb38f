package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkarpov/storefront/internal/domain/models"
	"github.com/mkarpov/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestGetUserByEmail_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "test@example.com"

	rows := sqlmock.NewRows([]string{"id", "name", "email", "pass_hash", "is_admin"}).
		AddRow(1, "Test User", email, []byte("hashed-password"), false)
	query := regexp.QuoteMeta("SELECT id, name, email, pass_hash, is_admin FROM users WHERE email = $1")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, email)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, email, user.Email)
	assert.False(t, user.IsAdmin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "nonexistent@example.com"

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	rows := sqlmock.NewRows([]string{"id", "name", "email", "pass_hash", "is_admin"})
	query := regexp.QuoteMeta("SELECT id, name, email, pass_hash, is_admin FROM users WHERE email = $1")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, email)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("INSERT INTO users (name, email, pass_hash, is_admin) VALUES ($1, $2, $3, $4) RETURNING id")
	mock.ExpectQuery(query).WithArgs("New User", "create@example.com", []byte("hashed"), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	user := &models.User{
		Name:     "New User",
		Email:    "create@example.com",
		PassHash: []byte("hashed"),
	}
	created, err := repo.CreateUser(ctx, user)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAdminStatus_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta("UPDATE users SET is_admin = $1 WHERE id = $2")
	mock.ExpectExec(query).WithArgs(true, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 строк затронуто

	err = repo.UpdateAdminStatus(ctx, 99, true)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCartItem_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	// Upsert выполняется одним запросом, без select-then-update.
	query := regexp.QuoteMeta("INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, 1) ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + 1")
	mock.ExpectExec(query).WithArgs(int64(7), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.AddItem(ctx, 7, 42)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCartItem_WrongOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	// Позиция id=9 принадлежит другому пользователю: удаление не затрагивает строк.
	query := regexp.QuoteMeta("DELETE FROM cart_items WHERE id = $1 AND user_id = $2")
	mock.ExpectExec(query).WithArgs(int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteItem(ctx, 2, 9)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCartItemNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartItemsByUserIDTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "name", "price", "image"}).
		AddRow(1, 7, 1, 2, "Widget", 9.99, "widget.png").
		AddRow(2, 7, 3, 1, "Gadget", 19.99, "gadget.png")
	query := regexp.QuoteMeta("SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image FROM cart_items c JOIN products p ON c.product_id = p.id WHERE c.user_id = $1 ORDER BY c.id")
	mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(rows)

	items, err := repo.GetItemsByUserIDTx(ctx, tx, 7)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Widget", items[0].ProductName)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	now := time.Now().UTC()
	query := regexp.QuoteMeta("INSERT INTO orders (user_id, order_date, address, city, state, postcode, country) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id")
	mock.ExpectQuery(query).
		WithArgs(int64(7), now, "Main St", "Springfield", "IL", "62704", "US").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	order := &models.Order{
		UserID:    7,
		OrderDate: now,
		Address:   "Main St",
		City:      "Springfield",
		State:     "IL",
		Postcode:  "62704",
		Country:   "US",
	}
	orderID, err := repo.CreateOrderTx(ctx, tx, order)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), orderID)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "order_date", "address", "city", "state", "postcode", "country"})
	query := regexp.QuoteMeta("SELECT o.id, u.name, u.email, o.order_date, o.address, o.city, o.state, o.postcode, o.country FROM orders o JOIN users u ON o.user_id = u.id WHERE o.id = $1")
	mock.ExpectQuery(query).WithArgs(int64(404)).WillReturnRows(rows)

	detail, err := repo.GetOrderByID(ctx, 404)
	assert.Error(t, err)
	assert.Nil(t, detail)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderItems_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"product_id", "quantity", "name", "price"}).
		AddRow(1, 2, "Widget", 9.99).
		AddRow(3, 1, "Gadget", 19.99)
	query := regexp.QuoteMeta("SELECT i.product_id, i.quantity, p.name, p.price FROM order_items i JOIN products p ON i.product_id = p.id WHERE i.order_id = $1 ORDER BY i.product_id")
	mock.ExpectQuery(query).WithArgs(int64(5)).WillReturnRows(rows)

	items, err := repo.GetOrderItems(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].ProductName)
	assert.Equal(t, 9.99, items[0].ProductPrice)
	assert.Equal(t, 1, items[1].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderTx_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("DELETE FROM orders WHERE id = $1")
	mock.ExpectExec(query).WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DeleteOrderTx(ctx, tx, 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrOrderNotFound))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByNameTx_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name", "price"})
	query := regexp.QuoteMeta("SELECT id, name, price FROM products WHERE name = $1")
	mock.ExpectQuery(query).WithArgs("Gizmo").WillReturnRows(rows)

	product, err := repo.GetProductByNameTx(ctx, tx, "Gizmo")
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_WithCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "category", "image"}).
		AddRow(1, "Widget", "A widget", 9.99, "tools", "widget.png")
	query := regexp.QuoteMeta("SELECT id, name, description, price, category, image FROM products WHERE category = $1")
	mock.ExpectQuery(query).WithArgs("tools").WillReturnRows(rows)

	products, err := repo.ListProducts(ctx, "tools")
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, "tools", products[0].Category)

	assert.NoError(t, mock.ExpectationsWereMet())
}
