package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port       string `env:"PORT,         default=8000"`
	Env        string `env:"ENV,          default=development"`
	LogLevel   string `env:"LOG_LEVEL,    default=info"`
	CORSOrigin string `env:"CORS_ORIGIN,  default=*"`
	Driver     string `env:"STORE_DRIVER, default=mongo"`

	Auth   AuthConfig
	Cookie CookieConfig
	Mongo  MongoConfig
	PG     PostgresConfig
	Redis  RedisConfig
	S3     S3Config
	Upload UploadConfig
	Audit  AuditConfig
}

type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	AccessExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY,  default=15m"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY, default=240h"`
	Issuer        string        `env:"TOKEN_ISSUER,         default=videotube"`
	BcryptCost    int           `env:"BCRYPT_COST,          default=10"`
}

type CookieConfig struct {
	Secure bool   `env:"COOKIE_SECURE, default=true"`
	Domain string `env:"COOKIE_DOMAIN"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=videotube"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// RedisConfig is optional: an empty Addr disables the distributed refresh lock.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,         default=0"`
	LockTTL  time.Duration `env:"REFRESH_LOCK_TTL, default=5s"`
}

type S3Config struct {
	Endpoint      string `env:"S3_ENDPOINT"`
	Region        string `env:"S3_REGION,          default=us-east-1"`
	Bucket        string `env:"S3_BUCKET,          default=videotube-media"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	UsePathStyle  bool   `env:"S3_USE_PATH_STYLE,  default=false"`
}

type UploadConfig struct {
	TempDir      string `env:"UPLOAD_TEMP_DIR"`
	MaxBytes     int64  `env:"UPLOAD_MAX_BYTES,     default=10485760"`
	MaxDimension int    `env:"UPLOAD_MAX_DIMENSION, default=1024"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	a := c.Auth
	if a.AccessSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if a.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if a.AccessSecret != "" && a.AccessSecret == a.RefreshSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if a.AccessExpiry <= 0 || a.RefreshExpiry <= 0 {
		errs = append(errs, errors.New("token expiries must be positive"))
	} else if a.AccessExpiry >= a.RefreshExpiry {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRY must be shorter than REFRESH_TOKEN_EXPIRY"))
	}

	switch c.Driver {
	case DriverMongo, DriverMemory:
	case DriverPostgres:
		if c.PG.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Driver))
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
