package middleware

import (
	"context"

	"github.com/benvon/career-coach/internal/models"
	"github.com/benvon/career-coach/internal/request"
)

// SetUserInContext attaches user to ctx the way Auth does. Exported for
// handler tests in other packages.
func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return request.WithUser(ctx, user)
}
