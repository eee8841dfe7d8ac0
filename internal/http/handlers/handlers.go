package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/metrics"
	"github.com/pribylovaa/comments-web/internal/models"
	"github.com/pribylovaa/comments-web/internal/service"
	"github.com/pribylovaa/comments-web/internal/tree"
)

// Handlers агрегирует зависимости обработчиков страниц и фрагментов.
type Handlers struct {
	svc      *service.Service
	guard    *tree.Guard
	metrics  *metrics.Metrics
	maxDepth int
	tpl      *templates
}

// Options — параметры отрисовки.
type Options struct {
	// MaxDepth — предел визуального отступа дерева.
	MaxDepth int
	// Location — пояс для дат комментариев; nil — time.Local.
	Location *time.Location
	Metrics  *metrics.Metrics
}

func New(svc *service.Service, guard *tree.Guard, opts Options) (*Handlers, error) {
	const op = "internal/http/handlers/New"

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	tpl, err := parseTemplates(loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Handlers{
		svc:      svc,
		guard:    guard,
		metrics:  opts.Metrics,
		maxDepth: opts.MaxDepth,
		tpl:      tpl,
	}, nil
}

// newTree — дерево одной загрузки страницы, читающее лес с токеном сессии.
func (h *Handlers) newTree(token string) *tree.Tree {
	return tree.New(func(ctx context.Context) ([]models.Comment, error) {
		return h.svc.ListComments(ctx, token)
	}, h.metrics)
}

// errInvalidParent — parent_id не число.
var errInvalidParent = &apierrors.ValidationError{Fields: map[string]string{"parent_id": "Invalid parent comment"}}

// parseCommentForm читает content и необязательный parent_id.
func parseCommentForm(r *http.Request) (models.CommentForm, error) {
	if err := r.ParseForm(); err != nil {
		return models.CommentForm{}, &apierrors.ValidationError{Fields: map[string]string{"form": "Malformed form"}}
	}

	f := models.CommentForm{Content: r.PostFormValue("content")}

	if raw := strings.TrimSpace(r.PostFormValue("parent_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return f, errInvalidParent
		}
		if id > 0 {
			f.ParentID = &id
		}
	}

	return f, nil
}

func checkbox(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostFormValue(name)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

// fieldErrors — карта ошибок полей, если err — ValidationError.
func fieldErrors(err error) map[string]string {
	var verr *apierrors.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func statusOf(err error) int {
	status, _ := apierrors.ToHTTP(err)
	return status
}

func parentOf(f models.CommentForm) int64 {
	if f.ParentID == nil {
		return 0
	}
	return *f.ParentID
}

// seeOther — редирект после POST (PRG).
func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
