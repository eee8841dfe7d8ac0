package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
)

// ListComments — GET /api/v1/comments/: весь лес корней с вложенными ответами.
// Bearer прикладывается, только если токен есть.
func (c *Client) ListComments(ctx context.Context, token string) ([]models.Comment, error) {
	const op = "internal/backend/ListComments"

	status, body, err := c.do(ctx, http.MethodGet, pathComments, token, "", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchComments, Err: err})
	}
	if !ok(status) {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchComments, Status: status})
	}

	var forest []models.Comment
	if err := json.Unmarshal(body, &forest); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchComments, Status: status, Err: err})
	}
	if forest == nil {
		forest = []models.Comment{}
	}

	return forest, nil
}

// CreateComment — POST /api/v1/comments/ (JSON). Созданный комментарий не
// возвращается: вызывающий перечитывает дерево целиком.
func (c *Client) CreateComment(ctx context.Context, token string, in models.CreateCommentRequest) error {
	const op = "internal/backend/CreateComment"

	status, _, err := c.doJSON(ctx, http.MethodPost, pathComments, token, in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgPostComment, Err: err})
	}
	if !ok(status) {
		return fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgPostComment, Status: status})
	}

	return nil
}
