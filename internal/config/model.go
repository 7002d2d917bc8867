// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the configuration tree that loader.go builds from
// three overlay layers:
//
//   - optional `.env`                          dotenv values,
//   - optional `conf/api.yaml`                 primary static file,
//   - `ISPORA_`-prefixed environment overrides highest precedence.
//
// String values of the form `vault:<mount>/<path>#<key>` are resolved
// through Vault after unmarshalling, so the model only ever holds plain
// secrets.
//
// Notes
// -----
//   - Struct tags use `koanf:"..."`.  Koanf ignores `yaml` tags.
//   - Database credentials are deliberately not `required` here.  The
//     database factory checks them per request so a misconfigured
//     deployment still serves /health and answers API calls with a 500
//     that names the problem.
//   - `Paths` is filled at runtime; YAML must not set it.
package config

import "time"

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	AllowOrigin     string        `koanf:"allow_origin"     validate:"required"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"   validate:"gte=1024"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Database holds the Postgres connection string and pool sizing.
//
// DSN is the Supabase connection string (session or transaction pooler).
// Password may be kept separately, typically as a Vault reference, and is
// injected into the parsed DSN at connect time.
type Database struct {
	DSN             string        `koanf:"dsn"`
	Password        string        `koanf:"password"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	QueryTimeout    time.Duration `koanf:"query_timeout"     validate:"gt=0"`
}

// RateLimit configures the fixed-window limiter.
type RateLimit struct {
	Limit   int           `koanf:"limit"    validate:"gte=1"`
	Window  time.Duration `koanf:"window"   validate:"gt=0"`
	MaxKeys int           `koanf:"max_keys" validate:"gte=1"`
}

// Auth enables the admin guard when either JWTSecret or JWKSURL is set.
// Supabase signs access tokens with the project JWT secret (HS256) or,
// on newer projects, with keys published at a JWKS endpoint.
type Auth struct {
	JWTSecret  string   `koanf:"jwt_secret"`
	JWKSURL    string   `koanf:"jwks_url"    validate:"omitempty,url"`
	Audience   string   `koanf:"audience"`
	AdminRoles []string `koanf:"admin_roles" validate:"dive,required"`
}

// Enabled reports whether admin routes require a bearer token.
func (a Auth) Enabled() bool { return a.JWTSecret != "" || a.JWKSURL != "" }

// Storage points at an S3-compatible bucket for image uploads.
type Storage struct {
	Endpoint        string `koanf:"endpoint"          validate:"omitempty,url"`
	Region          string `koanf:"region"`
	Bucket          string `koanf:"bucket"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	PublicBaseURL   string `koanf:"public_base_url"   validate:"omitempty,url"`
	Prefix          string `koanf:"prefix"`
	MaxUploadBytes  int64  `koanf:"max_upload_bytes"  validate:"gte=1"`
}

// Enabled reports whether uploads can be served.
func (s Storage) Enabled() bool { return s.Bucket != "" }

// GeoIP points at an optional GeoLite2-City database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

// Log configures the zap logger.
type Log struct {
	Dir     string `koanf:"dir"`
	Level   string `koanf:"level"   validate:"oneof=debug info warn error"`
	Console bool   `koanf:"console"`
}

// Paths is resolved at runtime.
type Paths struct {
	Root string
}

// Config is the immutable aggregate returned by Load.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	RateLimit RateLimit `koanf:"ratelimit"`
	Auth      Auth      `koanf:"auth"`
	Storage   Storage   `koanf:"storage"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Log       Log       `koanf:"log"`
	Paths     Paths     `koanf:"-"`
}

// Default returns the baseline every layer overrides.
func Default() Config {
	return Config{
		HTTP: HTTP{
			ListenAddr:      ":8080",
			AllowOrigin:     "*",
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    10 * time.Second,
		},
		RateLimit: RateLimit{
			Limit:   100,
			Window:  time.Minute,
			MaxKeys: 10000,
		},
		Auth: Auth{
			Audience:   "authenticated",
			AdminRoles: []string{"admin"},
		},
		Storage: Storage{
			Region:         "us-east-1",
			Prefix:         "images/",
			MaxUploadBytes: 5 << 20,
		},
		Log: Log{
			Dir:   "logs",
			Level: "info",
		},
	}
}
