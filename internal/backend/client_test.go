package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/comments-web/internal/backend/transport"
	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		BaseURL:   srv.URL + "/",
		UserAgent: "comments-web-test",
		Timeout:   2 * time.Second,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := New(Options{BaseURL: "/api"})
	require.Error(t, err)
}

func TestLogin_FormEncodingAndScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		remember bool
		scope    string
	}{
		{"remember", true, "remember_me"},
		{"session_only", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, pathLogin, r.URL.Path)
				require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
				require.Empty(t, r.Header.Get("Authorization"))
				require.Equal(t, "comments-web-test", r.Header.Get("User-Agent"))

				require.NoError(t, r.ParseForm())
				require.Equal(t, "alice", r.PostForm.Get("username"))
				require.Equal(t, "Secret1!", r.PostForm.Get("password"))
				require.Equal(t, tt.scope, r.PostForm.Get("scope"))
				_, has := r.PostForm["scope"]
				require.True(t, has, "scope is always sent")

				_ = json.NewEncoder(w).Encode(map[string]string{
					"access_token": "tok-1", "token_type": "bearer",
					"username": "alice", "email": "alice@example.com",
				})
			}))

			tok, err := c.Login(context.Background(), models.LoginRequest{
				Identifier: "alice", Password: "Secret1!", Remember: tt.remember,
			})
			require.NoError(t, err)
			require.Equal(t, "tok-1", tok.AccessToken)
			require.Equal(t, "alice", tok.Username)
		})
	}
}

func TestLogin_ErrorDetailAndFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		msg    string
	}{
		{"detail_string", http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, "Incorrect username or password"},
		{"detail_list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"no_detail", http.StatusInternalServerError, `oops`, MsgLoginFailed},
		{"empty_detail", http.StatusUnauthorized, `{"detail":""}`, MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			_, err := c.Login(context.Background(), models.LoginRequest{Identifier: "a", Password: "b"})

			var aerr *apierrors.AuthError
			require.ErrorAs(t, err, &aerr)
			require.Equal(t, tt.msg, aerr.Message)
			require.Equal(t, tt.status, aerr.Status)
		})
	}
}

func TestLogin_EmptyTokenIsFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"bearer"}`)
	}))

	_, err := c.Login(context.Background(), models.LoginRequest{Identifier: "a", Password: "b"})
	var aerr *apierrors.AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, MsgLoginFailed, aerr.Message)
}

func TestRegister_JSONBodyAndErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		require.Equal(t, pathRegister, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "alice1", in.Username)

		if n == 1 {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"Username already registered"}`)
	}))

	in := models.RegisterRequest{Username: "alice1", Email: "a@b.co", Password: "Secret1!"}
	require.NoError(t, c.Register(context.Background(), in))

	err := c.Register(context.Background(), in)
	var aerr *apierrors.AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, "Username already registered", aerr.Message)
	require.Equal(t, http.StatusBadRequest, aerr.Status)
}

func TestRegister_TransportFailureUsesFallback(t *testing.T) {
	t.Parallel()

	c, err := New(Options{
		BaseURL: "http://backend.invalid",
		Transport: transport.Func(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: connection refused")
		}),
	})
	require.NoError(t, err)

	err = c.Register(context.Background(), models.RegisterRequest{})
	var aerr *apierrors.AuthError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, MsgRegistrationFailed, aerr.Message)
	require.Zero(t, aerr.Status)
}

func TestLogout_SendsBearerAndReportsStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathLogout, r.URL.Path)
		if r.Header.Get("Authorization") == "Bearer tok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	require.NoError(t, c.Logout(context.Background(), "tok"))
	require.Error(t, c.Logout(context.Background(), ""))
}

func TestMe_BearerAndDecode(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathMe, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"id":7,"username":"alice","email":"alice@example.com"}`)
	}))

	u, err := c.Me(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, &models.User{ID: 7, Username: "alice", Email: "alice@example.com"}, u)

	_, err = c.Me(context.Background(), "bad")
	var ferr *apierrors.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, http.StatusUnauthorized, ferr.Status)
}

func TestListComments_BearerOnlyIfPresent(t *testing.T) {
	t.Parallel()

	var auth atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, pathComments, r.URL.Path)
		auth.Store(r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"id":1,"content":"root","created_at":"2024-05-01T10:00:00","user_id":1,
			 "user":{"username":"alice","email":"a@x.io"},"parent_id":0,
			 "children":[{"id":2,"content":"reply","created_at":"2024-05-01T11:00:00","user_id":2,
			   "user":{"username":"bob","email":"b@x.io"},"parent_id":1,"children":[]}]}
		]`)
	}))

	forest, err := c.ListComments(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, auth.Load())
	require.Len(t, forest, 1)
	require.True(t, forest[0].IsRoot())
	require.Len(t, forest[0].Children, 1)
	require.Equal(t, "reply", forest[0].Children[0].Content)

	_, err = c.ListComments(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", auth.Load())
}

func TestListComments_EmptyAndNull(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}))

	forest, err := c.ListComments(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, forest)
	require.Empty(t, forest)
}

func TestListComments_Non2xxIsFetchError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.ListComments(context.Background(), "")
	var ferr *apierrors.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, MsgFetchComments, ferr.Message)
	require.Equal(t, http.StatusServiceUnavailable, ferr.Status)
}

func TestCreateComment_BodyAndErrors(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var m map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		mu.Lock()
		bodies = append(bodies, m)
		mu.Unlock()

		if m["content"] == "fail" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	parent := int64(5)
	require.NoError(t, c.CreateComment(context.Background(), "tok", models.CreateCommentRequest{Content: "root"}))
	require.NoError(t, c.CreateComment(context.Background(), "tok", models.CreateCommentRequest{Content: "reply", ParentID: &parent}))

	err := c.CreateComment(context.Background(), "tok", models.CreateCommentRequest{Content: "fail"})
	var ferr *apierrors.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, MsgPostComment, ferr.Message)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 3)
	_, hasParent := bodies[0]["parent_id"]
	require.False(t, hasParent, "root comment omits parent_id")
	require.EqualValues(t, 5, bodies[1]["parent_id"])
}

func TestClient_PropagatesRequestID(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `[]`)
	}))

	ctx := context.WithValue(context.Background(), transport.CtxRequestID, "rid-42")
	_, err := c.ListComments(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "rid-42", got.Load())
}

func TestClient_TimeoutIsFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.ListComments(context.Background(), "")
	var ferr *apierrors.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Zero(t, ferr.Status)
	require.Error(t, ferr.Err)
}

func TestClient_BackendTimeoutAppliesUnderRequestDeadline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(800 * time.Millisecond):
		}
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	// Дедлайн входящего запроса длиннее таймаута вызова бэкенда.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	start := time.Now()
	_, err = c.Me(ctx, "tok")

	var ferr *apierrors.FetchError
	require.ErrorAs(t, err, &ferr)
	require.Less(t, time.Since(start), 700*time.Millisecond)
}
