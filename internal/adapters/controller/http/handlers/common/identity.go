package common

import (
	"context"

	"github.com/jooksuklubid/runclubs/internal/domain/dto"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, identity *dto.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the caller stored by the bearer middleware, or nil.
func IdentityFrom(ctx context.Context) *dto.Identity {
	identity, _ := ctx.Value(identityKey{}).(*dto.Identity)
	return identity
}
