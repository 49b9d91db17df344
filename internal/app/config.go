package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/cart-backend/internal/clients/redis"
	"github.com/yungbote/cart-backend/internal/data/db"
	"github.com/yungbote/cart-backend/internal/platform/envutil"
	"github.com/yungbote/cart-backend/internal/services"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Env     string `yaml:"env"`
	LogMode string `yaml:"log_mode"`

	HTTP struct {
		Addr              string        `yaml:"addr"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins       []string      `yaml:"cors_origins"`
	} `yaml:"http"`

	Database db.Config `yaml:"database"`

	Auth struct {
		Mode         string `yaml:"mode"`
		JWTSecretKey string `yaml:"jwt_secret_key"`
	} `yaml:"auth"`

	Redis redis.Config `yaml:"redis"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Env = "development"
	cfg.LogMode = "development"
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.ReadHeaderTimeout = 10 * time.Second
	cfg.HTTP.ShutdownTimeout = 15 * time.Second
	cfg.Database = db.Config{
		Driver:       "postgres",
		Host:         "localhost",
		Port:         "5432",
		User:         "postgres",
		Name:         "cart",
		SSLMode:      "disable",
		MaxOpenConns: 20,
		MaxIdleConns: 10,
		AutoMigrate:  true,
	}
	cfg.Auth.Mode = services.AuthModeBasic
	cfg.Redis.Channel = redis.DefaultChannel
	cfg.Metrics.Addr = ":9090"
	return cfg
}

// LoadConfig layers defaults, an optional YAML file and the environment,
// then validates the result.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	path := envutil.String("CART_CONFIG_PATH", "")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := loadFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("APP_ENV", cfg.Env)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ShutdownTimeout = envutil.Duration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	d := &cfg.Database
	d.Driver = envutil.String("DB_DRIVER", d.Driver)
	d.Host = envutil.String("POSTGRES_HOST", d.Host)
	d.Port = envutil.String("POSTGRES_PORT", d.Port)
	d.User = envutil.String("POSTGRES_USER", d.User)
	d.Password = envutil.String("POSTGRES_PASSWORD", d.Password)
	d.Name = envutil.String("POSTGRES_NAME", d.Name)
	d.SSLMode = envutil.String("POSTGRES_SSLMODE", d.SSLMode)
	d.DSN = envutil.String("DATABASE_URL", d.DSN)
	d.SQLitePath = envutil.String("SQLITE_PATH", d.SQLitePath)
	d.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", d.AutoMigrate)

	cfg.Auth.Mode = envutil.String("AUTH_MODE", cfg.Auth.Mode)
	cfg.Auth.JWTSecretKey = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecretKey)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = envutil.String("METRICS_ADDR", cfg.Metrics.Addr)
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "postgres", "postgresql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http addr is required")
	}
	if _, err := services.NewIdentityVerifier(c.Auth.Mode, c.Auth.JWTSecretKey); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}
