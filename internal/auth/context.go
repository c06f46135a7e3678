package auth

import "context"

type ctxKey string

const identityContextKey ctxKey = "taskboard.auth.identity"

// Identity is the authenticated caller. OwnerID scopes every task operation.
type Identity struct {
	OwnerID string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok && id.OwnerID != ""
}

// OwnerID returns the caller's owner identity, or "" when the request is anonymous.
func OwnerID(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.OwnerID
}
