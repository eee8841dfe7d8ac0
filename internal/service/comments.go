package service

import (
	"context"
	"fmt"
	"log/slog"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
	"github.com/pribylovaa/comments-web/internal/pkg/log"
	"github.com/pribylovaa/comments-web/internal/validate"
)

// ListComments — полный лес комментариев. Токен необязателен.
func (s *Service) ListComments(ctx context.Context, token string) ([]models.Comment, error) {
	const op = "service/comments/ListComments"

	forest, err := s.comments.ListComments(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return forest, nil
}

// CreateComment — публикация комментария или ответа.
//
// Порядок проверок:
//   - нет токена -> ErrAuthRequired, сетевой вызов не выполняется;
//   - текст вне 3..200 символов -> ValidationError, сетевой вызов не выполняется;
//   - ParentID == nil или 0 -> корень (parent_id не передаётся).
//
// Созданный комментарий не возвращается: вызывающий перечитывает дерево.
func (s *Service) CreateComment(ctx context.Context, token string, f models.CommentForm) error {
	const op = "service/comments/CreateComment"

	if token == "" {
		return fmt.Errorf("%s: %w", op, apierrors.ErrAuthRequired)
	}

	if errs := validate.Comment(f); len(errs) > 0 {
		return fmt.Errorf("%s: %w", op, &apierrors.ValidationError{Fields: errs})
	}

	req := models.CreateCommentRequest{Content: f.Content}
	if f.ParentID != nil && *f.ParentID > 0 {
		pid := *f.ParentID
		req.ParentID = &pid
	}

	lg := log.From(ctx).With("op", op)
	if req.ParentID != nil {
		lg = lg.With(slog.Int64("parent_id", *req.ParentID))
	}

	if err := s.comments.CreateComment(ctx, token, req); err != nil {
		lg.Warn("comment_post_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("comment_posted")

	return nil
}
