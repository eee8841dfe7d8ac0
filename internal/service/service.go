// service содержит прикладную логику фронтенда: предварительную валидацию
// форм, локальные запреты и политику выхода поверх клиента бэкенда.
package service

import (
	"github.com/pribylovaa/comments-web/internal/backend"
)

// Service — описывает бизнес-логику comments-web.
type Service struct {
	auth     backend.Auth
	comments backend.Comments
}

// New создает новый экземпляр Service.
func New(auth backend.Auth, comments backend.Comments) *Service {
	return &Service{
		auth:     auth,
		comments: comments,
	}
}
