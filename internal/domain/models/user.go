package models

// User представляет пользователя магазина
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PassHash []byte `json:"-"`
	IsAdmin  bool   `json:"isAdmin"`
}
