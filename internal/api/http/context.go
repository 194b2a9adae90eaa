package http

import (
	"context"

	"driverent-backend/internal/domain"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller resolved by the auth middleware.
func PrincipalFromContext(ctx context.Context) (domain.Principal, error) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	if !ok {
		return domain.Principal{}, &domain.ErrUnauthorized{Message: "principal is not provided"}
	}
	return p, nil
}
