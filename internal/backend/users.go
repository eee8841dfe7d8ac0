package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
)

// Me — GET /api/v1/user/me с bearer-токеном.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	const op = "internal/backend/Me"

	status, body, err := c.do(ctx, http.MethodGet, pathMe, token, "", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchUser, Err: err})
	}
	if !ok(status) {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchUser, Status: status})
	}

	var u models.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &apierrors.FetchError{Message: MsgFetchUser, Status: status, Err: err})
	}

	return &u, nil
}
