package models

// CartItem представляет позицию корзины: (пользователь, товар) -> количество.
// Пара (user_id, product_id) уникальна, повторное добавление увеличивает quantity.
type CartItem struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// Поля товара; заполняются через JOIN с таблицей products
	ProductName  string  `json:"name,omitempty"`
	ProductPrice float64 `json:"price,omitempty"`
	ProductImage string  `json:"image,omitempty"`
}
