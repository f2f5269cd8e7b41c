package auth

import (
	"context"
)

type ctxKey int

const userCtxKey ctxKey = iota

type UserContext struct {
	OrganizationID string
	UserID         string
	Email          string
	Role           string
}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

func FromContext(ctx context.Context) (UserContext, bool) {
	u, ok := ctx.Value(userCtxKey).(UserContext)
	return u, ok
}

// GetOrganizationID returns "" when the request is unauthenticated.
func GetOrganizationID(ctx context.Context) string {
	u, _ := FromContext(ctx)
	return u.OrganizationID
}

func GetUserID(ctx context.Context) string {
	u, _ := FromContext(ctx)
	return u.UserID
}
