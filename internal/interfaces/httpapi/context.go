package httpapi

import (
	"context"

	"github.com/riskibarqy/quiniela/internal/domain/user"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type principalKey struct{}

// withPrincipal stores the authenticated caller and tags the request span
// with it, so traces can be filtered by user.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("enduser.id", p.UserID),
		attribute.Bool("enduser.staff", p.IsStaff),
	)
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}
