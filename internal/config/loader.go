// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
Load builds one immutable Config from three layers (highest precedence
last):

  1. Optional `.env` file at `<root>/conf/.env`, then `<root>/.env`.
  2. Optional `conf/api.yaml`.
  3. Environment variables prefixed `ISPORA_`, where `__` maps to "."
     (e.g., `ISPORA_DATABASE__DSN → database.dsn`).

The merged tree is unmarshalled over Default(), Vault references are
resolved, and the result is validated.  main owns the returned value and
hands it to every component through their shared dependencies.

Instrumentation
---------------
Logs go through the global sugared logger (`zap.S()`), which is a no-op
until main installs the real logger.  Secrets are never logged.
*/
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/ispora/ispora-api/internal/vault"
)

const (
	envPrefix = "ISPORA_"
	yamlName  = "api.yaml"
)

// SecretResolver turns a `vault:` reference into its value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// rootDir resolves ISPORA_ROOT or climbs from the working directory until
// conf/api.yaml is found.  Falls back to the working directory.
func rootDir() string {
	if r := os.Getenv("ISPORA_ROOT"); r != "" {
		return r
	}
	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "conf", yamlName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return wd
}

// Load reads every layer, resolves secrets through Vault when referenced,
// and validates the result.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, nil)
}

// load accepts an explicit resolver for tests; nil means "dial Vault on
// demand".
func load(ctx context.Context, res SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))
	_ = godotenv.Load(filepath.Join(root, ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", yamlName)
	if _, err := os.Stat(yamlPath); errors.Is(err, fs.ErrNotExist) {
		zap.S().Debugw("config yaml absent, using defaults and env", "file", yamlPath)
	} else if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}
	cfg.Paths.Root = root

	if err := resolveSecrets(ctx, &cfg, res); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"database_configured", cfg.Database.DSN != "",
		"auth_enabled", cfg.Auth.Enabled(),
		"storage_enabled", cfg.Storage.Enabled(),
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every `vault:` reference for its value.  Vault is
// only dialled when at least one reference is present.
func resolveSecrets(ctx context.Context, cfg *Config, res SecretResolver) error {
	fields := []*string{
		&cfg.Database.DSN,
		&cfg.Database.Password,
		&cfg.Auth.JWTSecret,
		&cfg.Storage.AccessKeyID,
		&cfg.Storage.SecretAccessKey,
	}
	for _, f := range fields {
		if !vault.IsRef(*f) {
			continue
		}
		if res == nil {
			cli, err := vault.New()
			if err != nil {
				return err
			}
			res = cli
		}
		val, err := res.Resolve(ctx, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}
