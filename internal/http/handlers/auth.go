package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/comments-web/internal/backend"
	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
	logctx "github.com/pribylovaa/comments-web/internal/pkg/log"
	"github.com/pribylovaa/comments-web/internal/session"
	"github.com/pribylovaa/comments-web/internal/validate"
)

const noticeRegistered = "Registration successful. Please log in."

// LoginPage — GET /login. Вошедшего пользователя отправляет на главную.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())
	if sess.Authenticated() {
		seeOther(w, r, "/")
		return
	}

	data := page{Title: "Login", AuthKind: pageLogin, Auth: newFormState()}
	if r.URL.Query().Get("registered") != "" {
		data.Notice = noticeRegistered
	}

	h.render(w, r, http.StatusOK, pageLogin, data)
}

// Login — POST /login. Токен сохраняется в область по флагу remember me.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())

	_ = r.ParseForm()
	f := models.LoginForm{
		Identifier: r.PostFormValue(validate.FieldIdentifier),
		Password:   r.PostFormValue(validate.FieldPassword),
		Remember:   checkbox(r, "remember"),
	}

	state := newFormState()
	state.Values[validate.FieldIdentifier] = strings.TrimSpace(f.Identifier)
	state.Remember = f.Remember

	tok, err := h.svc.Login(r.Context(), f)
	if err != nil {
		state.apply(err)
		h.render(w, r, statusOf(err), pageLogin, page{Title: "Login", AuthKind: pageLogin, Auth: state})
		return
	}

	if err := sess.Store.Set(r.Context(), tok.AccessToken, f.Remember); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrTokenExpired) {
			// Бэкенд выдал уже истёкший токен: вход не состоялся.
			status = http.StatusUnauthorized
			logctx.From(r.Context()).Warn("login_token_expired")
		} else {
			logctx.From(r.Context()).Error("session_store_failed", slog.String("err", err.Error()))
		}

		state.Error = backend.MsgLoginFailed
		h.render(w, r, status, pageLogin, page{Title: "Login", AuthKind: pageLogin, Auth: state})
		return
	}

	seeOther(w, r, "/")
}

// RegisterPage — GET /register.
func (h *Handlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())
	if sess.Authenticated() {
		seeOther(w, r, "/")
		return
	}

	h.render(w, r, http.StatusOK, pageRegister, page{Title: "Register", AuthKind: pageRegister, Auth: newFormState()})
}

// Register — POST /register. Без автоматического входа: успех ведёт на /login.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f := models.RegisterForm{
		Username: r.PostFormValue(validate.FieldUsername),
		Email:    r.PostFormValue(validate.FieldEmail),
		Password: r.PostFormValue(validate.FieldPassword),
	}

	if err := h.svc.Register(r.Context(), f); err != nil {
		state := newFormState()
		state.Values[validate.FieldUsername] = strings.TrimSpace(f.Username)
		state.Values[validate.FieldEmail] = strings.TrimSpace(f.Email)
		state.apply(err)

		h.render(w, r, statusOf(err), pageRegister, page{Title: "Register", AuthKind: pageRegister, Auth: state})
		return
	}

	seeOther(w, r, "/login?registered=1")
}

// Logout — POST /logout. Сбой бэкенда не мешает выходу; сбой очистки
// локального хранилища логируется, cookie при этом уже погашены.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())

	if err := h.svc.Logout(r.Context(), sess.Store, sess.Token); err != nil {
		_, resp := apierrors.ToHTTP(err)
		logctx.From(r.Context()).Warn("logout_incomplete", slog.String("code", resp.Error.Code))
	}

	seeOther(w, r, "/")
}
