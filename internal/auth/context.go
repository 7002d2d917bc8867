// internal/auth/context.go
//
// Verified token claims carried in the request context.
//
// Usage
// -----
//
//	// The admin guard attaches claims after verifying the bearer token.
//	ctx = auth.WithClaims(ctx, c)
//
//	// Handlers read them back, e.g. to log who changed a record.
//	c, ok := auth.FromContext(ctx)
package auth

import "context"

// claimsKey is unexported to avoid context-key collisions.
type claimsKey struct{}

// WithClaims returns a new context carrying c.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// FromContext extracts the claims from ctx.  It returns (nil, false) when
// the request did not pass through the admin guard.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

// Subject is a convenience for log fields; "" when unauthenticated.
func Subject(ctx context.Context) string {
	if c, ok := FromContext(ctx); ok {
		return c.Subject
	}
	return ""
}
