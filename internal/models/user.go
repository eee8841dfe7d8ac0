// Package models содержит модели REST-контракта бэкенда комментариев
// и входные модели HTML-форм.
package models

// User — идентичность текущей сессии (ответ GET /api/v1/user/me)
// и денормализованный автор комментария.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Token — ответ POST /api/v1/auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
}

// LoginRequest — form-encoded тело логина.
// Identifier — username или email (бэкенд пробует оба).
type LoginRequest struct {
	Identifier string
	Password   string
	Remember   bool
}

// RegisterRequest — JSON-тело регистрации.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
