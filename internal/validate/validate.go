// validate — предварительная (до сетевого вызова) проверка полей форм.
// Все функции возвращают ошибки по ключу поля; пустая карта — форма валидна.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/comments-web/internal/models"
)

// Ключи полей форм.
const (
	FieldUsername   = "username"
	FieldEmail      = "email"
	FieldPassword   = "password"
	FieldIdentifier = "usernameOrEmail"
	FieldContent    = "content"
)

// Границы длины полей.
const (
	UsernameMin = 5
	UsernameMax = 20
	PasswordMin = 8
	PasswordMax = 20
	ContentMin  = 3
	ContentMax  = 200
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors — ошибки валидации по ключу поля.
type Errors map[string]string

// Register проверяет форму регистрации.
func Register(f models.RegisterForm) Errors {
	errs := Errors{}

	if msg := Username(f.Username); msg != "" {
		errs[FieldUsername] = msg
	}
	if msg := Password(f.Password); msg != "" {
		errs[FieldPassword] = msg
	}
	if msg := Email(f.Email); msg != "" {
		errs[FieldEmail] = msg
	}

	return errs
}

// Login проверяет только непустоту полей: силу пароля при входе не перепроверяем.
func Login(f models.LoginForm) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Identifier) == "" {
		errs[FieldIdentifier] = "Username or email is required"
	}
	if f.Password == "" {
		errs[FieldPassword] = "Password is required"
	}

	return errs
}

// Comment проверяет длину текста комментария в рунах.
func Comment(f models.CommentForm) Errors {
	errs := Errors{}

	if n := utf8.RuneCountInString(f.Content); n < ContentMin || n > ContentMax {
		errs[FieldContent] = "Comment must be between 3-200 characters"
	}

	return errs
}

// Username возвращает текст ошибки или "".
func Username(s string) string {
	switch {
	case strings.TrimSpace(s) == "":
		return "Username is required"
	case !isAlphanumeric(s):
		return "Username can only contain letters and numbers"
	case len(s) < UsernameMin || len(s) > UsernameMax:
		return "Username must be between 5-20 characters"
	}

	return ""
}

// Password возвращает текст ошибки или "".
func Password(s string) string {
	switch {
	case s == "":
		return "Password is required"
	case utf8.RuneCountInString(s) < PasswordMin || utf8.RuneCountInString(s) > PasswordMax:
		return "Password must be between 8-20 characters"
	case !passwordClasses(s):
		return "Password must contain at least one uppercase, one lowercase, one number and one special character"
	}

	return ""
}

// Email — структурная проверка, не полный RFC 5322.
func Email(s string) string {
	switch {
	case strings.TrimSpace(s) == "":
		return "Email is required"
	case !emailRe.MatchString(s):
		return "Invalid email format"
	}

	return ""
}

// isAlphanumeric — только ASCII буквы и цифры, строка не пустая.
func isAlphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9') && !('A' <= c && c <= 'Z') && !('a' <= c && c <= 'z') {
			return false
		}
	}

	return len(s) > 0
}

func passwordClasses(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	return lower && upper && digit && special
}
