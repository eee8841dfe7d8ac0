package handlers

import (
	"context"
	"net/http"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/session"
	"github.com/pribylovaa/comments-web/internal/tree"
)

// Index — GET /. Шапка, форма входа (или регистрации при ?form=register)
// для гостя и дерево комментариев.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, http.StatusOK, nil)
}

// renderIndex перечитывает лес и рисует главную. failed — форма
// комментария, отправка которой не удалась (nil — нет такой).
func (h *Handlers) renderIndex(w http.ResponseWriter, r *http.Request, status int, failed *commentForm) {
	sess := session.MustFrom(r.Context())

	snap := h.newTree(sess.Token).Refresh(r.Context())

	data := page{
		Title: "Comments",
		User:  sess.User,
		Tree:  h.treeData(sess, snap, failed),
	}
	if !sess.Authenticated() {
		data.AuthKind = pageLogin
		if r.URL.Query().Get("form") == pageRegister {
			data.AuthKind = pageRegister
		}
		data.Auth = newFormState()
		if failed != nil {
			data.Notice = failed.Error
		}
	}

	h.render(w, r, status, pageIndex, data)
}

func (h *Handlers) treeData(sess *session.Session, snap *tree.Snapshot, failed *commentForm) *treeData {
	td := &treeData{
		View:     tree.NewView(snap, h.maxDepth),
		LoggedIn: sess.Authenticated(),
		Root:     newCommentForm(0),
	}

	if failed != nil {
		if failed.ParentID == 0 {
			td.Root = *failed
		} else {
			td.Reply = failed
		}
	}

	return td
}

// PostComment — POST /comments. Успех — редирект на главную, где лес
// перечитывается целиком (PRG). Ошибка — главная с сообщением у формы.
func (h *Handlers) PostComment(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())

	f, err := parseCommentForm(r)
	if err == nil {
		err = h.submit(r.Context(), sess, f.ParentID, func(ctx context.Context) error {
			return h.svc.CreateComment(ctx, sess.Token, f)
		})
	}

	if err != nil {
		failed := newCommentForm(parentOf(f))
		failed.Content = f.Content
		if fields := fieldErrors(err); fields != nil {
			failed.Fields = fields
			if msg, ok := fields["parent_id"]; ok {
				failed.Error = msg
			}
		} else {
			failed.Error = apierrors.Message(err)
		}

		h.renderIndex(w, r, statusOf(err), &failed)
		return
	}

	seeOther(w, r, "/#comments")
}

// CommentsFragment — GET /fragments/comments: только дерево (HTML).
// Ошибка загрузки рисуется в самом фрагменте со статусом 502.
func (h *Handlers) CommentsFragment(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())

	snap := h.newTree(sess.Token).Refresh(r.Context())

	status := http.StatusOK
	if snap.State == tree.Error {
		status = statusOf(snap.Err)
	}

	h.renderFragment(w, r, status, h.treeData(sess, snap, nil))
}

// PostCommentFragment — POST /fragments/comments: публикация и перечитывание
// дерева в одном запросе. Ошибка публикации — JSON-конверт.
func (h *Handlers) PostCommentFragment(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFrom(r.Context())

	f, err := parseCommentForm(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tr := h.newTree(sess.Token)
	err = h.submit(r.Context(), sess, f.ParentID, func(ctx context.Context) error {
		return tr.Submit(ctx, func(ctx context.Context) error {
			return h.svc.CreateComment(ctx, sess.Token, f)
		})
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	snap := tr.Snapshot()
	status := http.StatusOK
	if snap.State == tree.Error {
		status = statusOf(snap.Err)
	}

	h.renderFragment(w, r, status, h.treeData(sess, snap, nil))
}

// submit выполняет fn под защитой Guard: повторная отправка той же формы
// той же сессии, пока первая в полёте, получает ErrSubmitInProgress.
// Без токена — сразу ErrAuthRequired, ключ Guard не занимается.
func (h *Handlers) submit(ctx context.Context, sess *session.Session, parentID *int64, fn func(context.Context) error) error {
	if sess.Token == "" {
		return apierrors.ErrAuthRequired
	}

	release, err := h.guard.Acquire(tree.Key(sess.Token, parentID))
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx)
}
