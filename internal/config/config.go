package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root service configuration.
//
// Sources, highest priority first:
//  1. explicit path passed to Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables are always applied on top of a file.
type Config struct {
	App   AppConfig   `yaml:"app"`
	Log   LogConfig   `yaml:"log"`
	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`
	GRPC  GRPCConfig  `yaml:"grpc"`
	HTTP  HTTPConfig  `yaml:"http"`
	Auth  AuthConfig  `yaml:"auth"`
	Blob  BlobConfig  `yaml:"blob"`
	Crush CrushConfig `yaml:"crush"`
}

type AppConfig struct {
	ENV string `yaml:"env" env:"APP_ENV" env-default:"development"`
	// SeedOnStart wipes accounts, profiles and crushes and loads demo data
	// when the server boots.
	SeedOnStart bool `yaml:"seed_on_start" env:"SEED_ON_START" env-default:"false"`
}

type LogConfig struct {
	Level     string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format    string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Component string `yaml:"component" env:"LOG_COMPONENT" env-default:"crush_radar"`
	Source    bool   `yaml:"source" env:"LOG_SOURCE" env-default:"false"`
}

// DBConfig holds MySQL connection settings. DSN wins when set;
// otherwise it is assembled from the parts.
type DBConfig struct {
	DSN      string `yaml:"dsn" env:"MYSQL_DSN"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"3306"`
	User     string `yaml:"user" env:"DB_USER" env-default:"root"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"root"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"crushradar"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Addr returns host:port.
func (g GRPCConfig) Addr() string { return net.JoinHostPort(g.Host, g.Port) }

type HTTPConfig struct {
	Host           string        `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port           string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"HTTP_REQUEST_TIMEOUT" env-default:"15s"`
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig controls token issuing. The default secret is only fit for
// development; cmd/server warns when it is used elsewhere.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"dev-only-secret"`
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"crush-radar"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"24h"`
}

// BlobConfig describes the S3-compatible bucket holding avatars.
type BlobConfig struct {
	Endpoint       string `yaml:"endpoint" env:"BLOB_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKey      string `yaml:"access_key" env:"BLOB_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey      string `yaml:"secret_key" env:"BLOB_SECRET_KEY" env-default:"minioadmin"`
	Bucket         string `yaml:"bucket" env:"BLOB_BUCKET" env-default:"avatars"`
	PublicBaseURL  string `yaml:"public_base_url" env:"BLOB_PUBLIC_BASE_URL" env-default:"http://localhost:9000/avatars"`
	MaxAvatarBytes int64  `yaml:"max_avatar_bytes" env:"BLOB_MAX_AVATAR_BYTES" env-default:"5242880"`
}

// CrushConfig tunes the selection workflow.
type CrushConfig struct {
	ToggleGuardTTL time.Duration `yaml:"toggle_guard_ttl" env:"CRUSH_TOGGLE_GUARD_TTL" env-default:"5s"`
	CountTTL       time.Duration `yaml:"count_ttl" env:"CRUSH_COUNT_TTL" env-default:"1h"`
	SessionTTL     time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"30m"`
}

// New loads configuration from the default sources and panics on error.
func New() *Config {
	return MustLoad("")
}

// MustLoad wraps Load and panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration following the documented priority.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q: %w", path, err)
		}
		// ReadConfig overlays env on top of the file.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	cfg.DB.DSN = cfg.DB.dsn()
	return &cfg, nil
}

func (d DBConfig) dsn() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}
