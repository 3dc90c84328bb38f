package models

// Product представляет товар каталога.
// С точки зрения workflow заказов товар неизменяемый (read-only).
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}
