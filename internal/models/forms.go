package models

// LoginForm — поля формы входа в том виде, как их прислал браузер.
type LoginForm struct {
	Identifier string
	Password   string
	Remember   bool
}

// RegisterForm — поля формы регистрации.
type RegisterForm struct {
	Username string
	Email    string
	Password string
}

// CommentForm — форма нового комментария или ответа.
// ParentID == nil — комментарий верхнего уровня.
type CommentForm struct {
	Content  string
	ParentID *int64
}
