// internal/auth/verifier.go
//
// Supabase access-token verification for admin routes.
//
// Context
// -------
// The dashboard signs in through Supabase Auth and sends the session's
// access token as `Authorization: Bearer <jwt>`.  Two signing setups exist:
//
//   - legacy projects sign with the shared project secret (HS256),
//   - newer projects sign asymmetrically and publish keys at a JWKS URL.
//
// NewVerifier picks the mode from config.Auth; JWKS wins when both are set.
// Keys are fetched and refreshed in the background by keyfunc.
//
// Admin rule
// ----------
// A token is an admin token when its top-level `role` is `service_role`,
// or when app_metadata.role / app_metadata.roles names one of the
// configured admin roles.  User-editable user_metadata is never consulted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ispora/ispora-api/internal/config"
)

// ServiceRole is the Postgres role Supabase puts in service-key tokens.
const ServiceRole = "service_role"

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotAdmin     = errors.New("token lacks an admin role")
)

// Claims is the subset of a Supabase access token the API uses.
type Claims struct {
	jwt.RegisteredClaims
	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// AppMetadata is the server-controlled part of the user record.
type AppMetadata struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Verifier validates tokens and applies the admin rule.
type Verifier struct {
	keys       func(ctx context.Context) jwt.Keyfunc
	methods    []string
	audience   string
	adminRoles []string
}

// NewVerifier builds a Verifier from cfg.  It returns (nil, nil) when auth
// is disabled.  ctx bounds the background JWKS refresh.
func NewVerifier(ctx context.Context, cfg config.Auth) (*Verifier, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	v := &Verifier{audience: cfg.Audience, adminRoles: cfg.AdminRoles}

	if cfg.JWKSURL != "" {
		kf, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("jwks %s: %w", cfg.JWKSURL, err)
		}
		v.keys = kf.KeyfuncCtx
		v.methods = []string{"RS256", "ES256"}
		return v, nil
	}

	secret := []byte(cfg.JWTSecret)
	v.keys = func(context.Context) jwt.Keyfunc {
		return func(*jwt.Token) (any, error) { return secret, nil }
	}
	v.methods = []string{"HS256"}
	return v, nil
}

// Verify parses a raw Authorization header value and returns the claims
// of a valid admin token.
func (v *Verifier) Verify(ctx context.Context, header string) (*Claims, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, ErrNoToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	c := &Claims{}
	if _, err := jwt.ParseWithClaims(token, c, v.keys(ctx), opts...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !v.isAdmin(c) {
		return c, ErrNotAdmin
	}
	return c, nil
}

func (v *Verifier) isAdmin(c *Claims) bool {
	if c.Role == ServiceRole {
		return true
	}
	if slices.Contains(v.adminRoles, c.AppMetadata.Role) {
		return true
	}
	for _, r := range c.AppMetadata.Roles {
		if slices.Contains(v.adminRoles, r) {
			return true
		}
	}
	return false
}
