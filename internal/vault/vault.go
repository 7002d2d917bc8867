// internal/vault/vault.go
//
// Vault KV v2 lookups for configuration secrets.
//
// Context
// -------
// Configuration values may reference a secret instead of holding it:
//
//	database:
//	  password: "vault:secret/ispora/api#db_password"
//
// The part before "#" is `<mount>/<path>`, the part after is the key in
// the secret's data map.  Resolved values are cached for the life of the
// Client; the loader runs once at startup, so no renewal loop is needed.
//
// Environment expectations
// ------------------------
//   - VAULT_ADDR   scheme and host of the Vault server.
//   - VAULT_TOKEN  token with read access to the referenced paths.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	vaultapi "github.com/hashicorp/vault/api"
)

const refPrefix = "vault:"

// ErrBadRef is returned for strings that are not `vault:<path>#<key>`.
var ErrBadRef = errors.New("malformed vault reference")

// Client is safe for concurrent use.
type Client struct {
	api *vaultapi.Client

	mu    sync.RWMutex
	cache map[string]string
}

// New builds a Client from VAULT_* environment variables.
func New() (*Client, error) {
	cfg := vaultapi.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	return NewWithAPI(api), nil
}

// NewWithAPI wraps an existing API client.
func NewWithAPI(api *vaultapi.Client) *Client {
	return &Client{api: api, cache: make(map[string]string)}
}

// IsRef reports whether s is a vault reference.
func IsRef(s string) bool { return strings.HasPrefix(s, refPrefix) }

// ParseRef splits "vault:<mount>/<path>#<key>" into mount, path, and key.
func ParseRef(ref string) (mount, path, key string, err error) {
	if !IsRef(ref) {
		return "", "", "", ErrBadRef
	}
	loc, key, ok := strings.Cut(strings.TrimPrefix(ref, refPrefix), "#")
	if !ok || key == "" {
		return "", "", "", fmt.Errorf("%w: %q has no key", ErrBadRef, ref)
	}
	mount, path, ok = strings.Cut(strings.Trim(loc, "/"), "/")
	if !ok || mount == "" || path == "" {
		return "", "", "", fmt.Errorf("%w: %q needs <mount>/<path>", ErrBadRef, ref)
	}
	return mount, path, key, nil
}

// Resolve returns the secret named by ref.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	c.mu.RLock()
	val, ok := c.cache[ref]
	c.mu.RUnlock()
	if ok {
		return val, nil
	}

	mount, path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	sec, err := c.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", mount, path, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in %s/%s", key, mount, path)
	}
	val, ok = raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s/%s#%s is not a string", mount, path, key)
	}

	c.mu.Lock()
	c.cache[ref] = val
	c.mu.Unlock()
	return val, nil
}
