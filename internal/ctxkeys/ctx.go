package ctxkeys

import (
	"context"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Identity returns the request principal. The zero (anonymous) identity is
// returned when the auth middleware resolved no valid token.
func Identity(ctx context.Context) model.Identity {
	ident, _ := ctx.Value(IdentityKey).(model.Identity)
	return ident
}

func WithIdentity(ctx context.Context, ident model.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}
