// errors описывает таксономию ошибок comments-web и их отображение в HTTP.
//
//   - ValidationError — ошибки полей формы, сетевой вызов не выполнялся;
//   - AuthError — бэкенд отверг учётные данные/регистрацию, сообщение от бэкенда;
//   - ErrAuthRequired — локальный запрет: публикация без сессии;
//   - FetchError — неуспешный ответ или транспортный сбой при работе с комментариями;
//   - ErrSubmitInProgress — повторная отправка той же формы, пока первая в полёте.
//
// Сбой разрешения сессии ошибкой не считается: его глушат и логируют.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthRequired — попытка опубликовать комментарий без токена.
	ErrAuthRequired = errors.New("auth required")
	// ErrSubmitInProgress — предыдущая отправка этой формы ещё выполняется.
	ErrSubmitInProgress = errors.New("submission in progress")
)

// ValidationError — ошибки по ключу поля.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// AuthError — отказ бэкенда при логине/регистрации.
// Message — detail от бэкенда либо общий текст ("Login failed").
// Status — HTTP-статус ответа бэкенда, 0 — транспортный сбой.
type AuthError struct {
	Message string
	Status  int
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// FetchError — сбой чтения/записи комментариев или профиля.
// Status == 0 — транспортный сбой (Err заполнен).
type FetchError struct {
	Message string
	Status  int
	Err     error
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Unwrap() error { return e.Err }

// APIError — единый формат для скриптовых клиентов.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и безопасное сообщение.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - ValidationError -> 422 с картой полей;
//   - AuthError -> статус бэкенда (400/401/409), иначе 401; сообщение пробрасывается;
//   - ErrAuthRequired -> 401;
//   - ErrSubmitInProgress -> 409;
//   - FetchError -> 502 (апстрим ответил ошибкой или недоступен);
//   - прочее -> 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, internal()
	}

	var (
		verr *ValidationError
		aerr *AuthError
		ferr *FetchError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: APIError{
			Code:    "validation_failed",
			Message: "validation failed",
			Fields:  verr.Fields,
		}}
	case errors.As(err, &aerr):
		status := http.StatusUnauthorized
		switch aerr.Status {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			status = aerr.Status
		}
		return status, ErrorResponse{Error: APIError{Code: "auth_failed", Message: aerr.Message}}
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized, ErrorResponse{Error: APIError{Code: "auth_required", Message: "Please login to post comments"}}
	case errors.Is(err, ErrSubmitInProgress):
		return http.StatusConflict, ErrorResponse{Error: APIError{Code: "in_progress", Message: "Submission already in progress"}}
	case errors.As(err, &ferr):
		return http.StatusBadGateway, ErrorResponse{Error: APIError{Code: "fetch_failed", Message: ferr.Message}}
	default:
		return http.StatusInternalServerError, internal()
	}
}

// Message — текст для показа пользователю рядом с формой.
func Message(err error) string {
	_, resp := ToHTTP(err)
	return resp.Error.Message
}

// WriteError пишет JSON-конверт ошибки и добавляет request_id из заголовка.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func internal() ErrorResponse {
	return ErrorResponse{Error: APIError{Code: "internal", Message: "internal error"}}
}
