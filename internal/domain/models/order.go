package models

import "time"

// Order представляет заказ, созданный из снимка корзины
type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	OrderDate time.Time `json:"orderDate"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Postcode  string    `json:"postcode"`
	Country   string    `json:"country"`
}

// OrderItem представляет одну позицию заказа.
// Цена в позиции не хранится: сумма считается через JOIN с актуальной ценой товара.
type OrderItem struct {
	OrderID   int64 `json:"-"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// Поля товара; заполняются через JOIN с таблицей products
	ProductName  string  `json:"name"`
	ProductPrice float64 `json:"price"`
}

// OrderDetail — заказ вместе с данными владельца и позициями
type OrderDetail struct {
	OrderID       int64        `json:"orderId"`
	CustomerName  string       `json:"customerName"`
	CustomerEmail string       `json:"customerEmail"`
	OrderDate     time.Time    `json:"orderDate"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	Postcode      string       `json:"postcode"`
	Country       string       `json:"country"`
	Products      []*OrderItem `json:"products"`
}

// OrderSummary — строка дашборда: заказ с агрегатами по позициям
type OrderSummary struct {
	OrderID       int64     `json:"orderId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	ProductNames  string    `json:"productNames"`
	TotalAmount   float64   `json:"totalAmount"`
	OrderDate     time.Time `json:"orderDate"`
}
