package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ispora/ispora-api/internal/config"
)

const secret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func claims(role string, appRole string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:        role,
		AppMetadata: AppMetadata{Role: appRole},
	}
}

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(context.Background(), config.Auth{
		JWTSecret:  secret,
		Audience:   "authenticated",
		AdminRoles: []string{"admin"},
	})
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func TestDisabled(t *testing.T) {
	v, err := NewVerifier(context.Background(), config.Auth{})
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestVerifyAdmin(t *testing.T) {
	v := newVerifier(t)
	c, err := v.Verify(context.Background(), "Bearer "+sign(t, claims("authenticated", "admin")))
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)

	_, err = v.Verify(context.Background(), "bearer "+sign(t, claims(ServiceRole, "")))
	assert.NoError(t, err)

	multi := claims("authenticated", "")
	multi.AppMetadata.Roles = []string{"editor", "admin"}
	_, err = v.Verify(context.Background(), "Bearer "+sign(t, multi))
	assert.NoError(t, err)
}

func TestVerifyRejects(t *testing.T) {
	v := newVerifier(t)

	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = v.Verify(context.Background(), "Basic abc")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = v.Verify(context.Background(), "Bearer not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := claims("authenticated", "admin")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err = v.Verify(context.Background(), "Bearer "+sign(t, expired))
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAud := claims("authenticated", "admin")
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	_, err = v.Verify(context.Background(), "Bearer "+sign(t, wrongAud))
	assert.ErrorIs(t, err, ErrInvalidToken)

	c, err := v.Verify(context.Background(), "Bearer "+sign(t, claims("authenticated", "member")))
	assert.True(t, errors.Is(err, ErrNotAdmin))
	require.NotNil(t, c)
	assert.Equal(t, "user-1", c.Subject)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	_, ok := FromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", Subject(ctx))

	c := claims("authenticated", "admin")
	ctx = WithClaims(ctx, &c)
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", got.Subject)
	assert.Equal(t, "user-1", Subject(ctx))
}
