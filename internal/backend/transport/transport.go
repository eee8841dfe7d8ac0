// transport — набор http.RoundTripper-обёрток для исходящих вызовов бэкенда.
package transport

import "net/http"

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
	CtxAuthToken CtxKey = "auth_token"
)

// Func адаптирует функцию к http.RoundTripper.
type Func func(*http.Request) (*http.Response, error)

func (f Func) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Middleware оборачивает RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain применяет обёртки в порядке перечисления: первая — самая внешняя.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// RequestID достаёт request_id, положенный HTTP-мидлваром.
func RequestID(r *http.Request) string {
	rid, _ := r.Context().Value(CtxRequestID).(string)
	return rid
}
