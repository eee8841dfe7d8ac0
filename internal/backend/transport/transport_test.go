package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/pkg/log"
)

type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func okResponse(r *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
		Request:    r,
	}
}

func newReq(ctx context.Context, path string) *http.Request {
	r, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://backend.local"+path, nil)
	return r
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return Func(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(Func(func(r *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return okResponse(r, http.StatusOK), nil
	}), mw("m1"), mw("m2"))

	_, err := rt.RoundTrip(newReq(context.Background(), "/"))
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m2", "base"}, order)
}

func TestWithMetadata_AppendsHeaders(t *testing.T) {
	t.Parallel()

	const rid = "rid-123"
	const ua = "comments-web"

	ctx := context.WithValue(context.Background(), CtxRequestID, rid)
	orig := newReq(ctx, "/api/v1/comments/")

	var seen http.Header
	rt := WithMetadata(ua)(Func(func(r *http.Request) (*http.Response, error) {
		seen = r.Header
		return okResponse(r, http.StatusOK), nil
	}))

	_, err := rt.RoundTrip(orig)
	require.NoError(t, err)

	require.Equal(t, rid, seen.Get("X-Request-Id"))
	require.Equal(t, ua, seen.Get("User-Agent"))
	// Исходный запрос не тронут.
	require.Empty(t, orig.Header.Get("X-Request-Id"))
}

func TestWithMetadata_SkipEmptyValues(t *testing.T) {
	t.Parallel()

	var seen http.Header
	rt := WithMetadata("")(Func(func(r *http.Request) (*http.Response, error) {
		seen = r.Header
		return okResponse(r, http.StatusOK), nil
	}))

	_, err := rt.RoundTrip(newReq(context.Background(), "/"))
	require.NoError(t, err)
	require.Empty(t, seen.Get("X-Request-Id"))
	require.Empty(t, seen.Get("User-Agent"))
}

func TestWithTimeout_SetsDeadline(t *testing.T) {
	t.Parallel()

	const d = 40 * time.Millisecond

	start := time.Now()
	rt := WithTimeout(d)(Func(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	}))

	_, err := rt.RoundTrip(newReq(context.Background(), "/slow"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, time.Since(start), d)
}

func TestWithTimeout_ShorterThanRequestDeadlineWins(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var childDL time.Time
	start := time.Now()
	rt := WithTimeout(100 * time.Millisecond)(Func(func(r *http.Request) (*http.Response, error) {
		childDL, _ = r.Context().Deadline()
		<-r.Context().Done()
		return nil, r.Context().Err()
	}))

	_, err := rt.RoundTrip(newReq(parent, "/api/v1/user/me"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.WithinDuration(t, start.Add(100*time.Millisecond), childDL, 50*time.Millisecond)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestWithTimeout_EarlierRequestDeadlineKept(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	var childDL time.Time
	rt := WithTimeout(time.Second)(Func(func(r *http.Request) (*http.Response, error) {
		childDL, _ = r.Context().Deadline()
		return okResponse(r, http.StatusOK), nil
	}))

	_, err := rt.RoundTrip(newReq(parent, "/"))
	require.NoError(t, err)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestWithTimeout_ZeroDuration_PassThrough(t *testing.T) {
	t.Parallel()

	var hasDL bool
	rt := WithTimeout(0)(Func(func(r *http.Request) (*http.Response, error) {
		_, hasDL = r.Context().Deadline()
		return okResponse(r, http.StatusOK), nil
	}))

	_, err := rt.RoundTrip(newReq(context.Background(), "/"))
	require.NoError(t, err)
	require.False(t, hasDL)
}

func TestWithTimeout_BodyReadableUntilClose(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	rt := WithTimeout(time.Second)(http.DefaultTransport)
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.NoError(t, resp.Body.Close())
}

func TestWithLogging_LogsAndPutsLoggerIntoContext(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	rt := WithLogging(slog.New(h))(Func(func(r *http.Request) (*http.Response, error) {
		log.From(r.Context()).Info("inner")
		return okResponse(r, http.StatusCreated), nil
	}))

	_, err := rt.RoundTrip(newReq(context.Background(), "/api/v1/comments/"))
	require.NoError(t, err)

	require.Equal(t, 1, h.count["inner"])
	require.Equal(t, "backend", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.EqualValues(t, http.StatusCreated, h.attrs["status"])
	require.Equal(t, "/api/v1/comments/", h.attrs["path"])

	rid, _ := h.attrs["request_id"].(string)
	_, perr := uuid.Parse(rid)
	require.NoError(t, perr)
}

func TestWithLogging_TransportErrorIsWarn(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	boom := errors.New("connection refused")
	rt := WithLogging(slog.New(h))(Func(func(r *http.Request) (*http.Response, error) {
		return nil, boom
	}))

	ctx := context.WithValue(context.Background(), CtxRequestID, "rid-1")
	_, err := rt.RoundTrip(newReq(ctx, "/api/v1/user/me"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, slog.LevelWarn, h.lastLvl)
	require.Equal(t, "rid-1", h.attrs["request_id"])
}

func TestWithMetrics_CountsByEndpointAndCode(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	calls := 0
	rt := WithMetrics(m)(Func(func(r *http.Request) (*http.Response, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("down")
		}
		return okResponse(r, http.StatusOK), nil
	}))

	_, _ = rt.RoundTrip(newReq(context.Background(), "/api/v1/comments/"))
	_, _ = rt.RoundTrip(newReq(context.Background(), "/api/v1/comments/"))

	require.InDelta(t, 1, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GET /api/v1/comments/", "200")), 1e-9)
	require.InDelta(t, 1, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GET /api/v1/comments/", "error")), 1e-9)
}
