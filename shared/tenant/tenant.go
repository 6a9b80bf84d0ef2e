package tenant

import (
	"context"
	"errors"
)

// ErrMissingTenant is returned when a tenant-scoped operation runs without
// a tenant bound to its context. This is a programming error at the call
// site, not a business condition.
var ErrMissingTenant = errors.New("no tenant bound to context")

type ctxKey struct{}

// WithTenant binds the active tenant id to the context. Every tenant-scoped
// operation below the service edge receives its tenant this way; there is no
// process-global fallback.
func WithTenant(ctx context.Context, tenantID string) (context.Context, error) {
	if tenantID == "" {
		return ctx, errors.New("tenant id must not be empty")
	}
	return context.WithValue(ctx, ctxKey{}, tenantID), nil
}

// FromContext returns the tenant id bound to the context, or ErrMissingTenant.
func FromContext(ctx context.Context) (string, error) {
	tenantID, ok := ctx.Value(ctxKey{}).(string)
	if !ok || tenantID == "" {
		return "", ErrMissingTenant
	}
	return tenantID, nil
}
