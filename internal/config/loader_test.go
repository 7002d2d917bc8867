package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	if v, ok := f[ref]; ok {
		return v, nil
	}
	return "", errors.New("no such secret")
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", yamlName), []byte(body), 0o644))
	t.Setenv("ISPORA_ROOT", root)
	return root
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("ISPORA_ROOT", t.TempDir())

	cfg, err := load(context.Background(), fakeResolver{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, 100, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Auth.Enabled())
}

func TestLoad_YAMLAndEnvOverlay(t *testing.T) {
	root := writeYAML(t, `
http:
  listen_addr: ":9000"
database:
  dsn: "postgres://svc@db.example.supabase.co:5432/postgres"
ratelimit:
  limit: 20
  window: 30s
`)
	t.Setenv("ISPORA_RATELIMIT__LIMIT", "5")
	t.Setenv("ISPORA_AUTH__JWT_SECRET", "shh")

	cfg, err := load(context.Background(), fakeResolver{})
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Paths.Root)
	assert.Equal(t, ":9000", cfg.HTTP.ListenAddr)
	assert.Equal(t, 5, cfg.RateLimit.Limit, "env must win over yaml")
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, 10, cfg.Database.MaxOpenConns, "untouched defaults survive")
}

func TestLoad_ResolvesVaultRefs(t *testing.T) {
	writeYAML(t, `
database:
  dsn: "postgres://svc@db.example.supabase.co:5432/postgres"
  password: "vault:secret/ispora#db_password"
`)
	cfg, err := load(context.Background(), fakeResolver{"vault:secret/ispora#db_password": "pw"})
	require.NoError(t, err)
	assert.Equal(t, "pw", cfg.Database.Password)
}

func TestLoad_SecretFailureAborts(t *testing.T) {
	writeYAML(t, `
auth:
  jwt_secret: "vault:secret/ispora#missing"
`)
	_, err := load(context.Background(), fakeResolver{})
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	writeYAML(t, `
log:
  level: "chatty"
`)
	_, err := load(context.Background(), fakeResolver{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}
