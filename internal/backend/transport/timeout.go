package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WithTimeout навешивает таймаут d на каждый исходящий вызов.
//
// Контракт:
//  1. d <= 0 — запрос уходит как есть;
//  2. иначе — context.WithTimeout(ctx, d): действует более ранний из дедлайна
//     входящего запроса и now+d; cancel() вызывается при закрытии тела ответа
//     либо сразу при ошибке транспорта.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return Func(func(r *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)

			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

// cancelBody освобождает контекст вызова, когда тело дочитано и закрыто.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
