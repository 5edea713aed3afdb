package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config is shared by the api, dashboard and ingest binaries. Each binary
// validates only the sections it uses.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	DB        DBConfig        `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Dashboard DashboardConfig `envPrefix:"DASHBOARD_"`
	Ingest    IngestConfig    `envPrefix:"INGEST_"`
}

type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Addr        string `env:"ADDR" envDefault:":8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"stocks"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	TimeZone string `env:"TIMEZONE" envDefault:"UTC"`
}

// DSN renders the libpq connection string gorm's postgres driver expects.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone)
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type JWTConfig struct {
	Secret     string        `env:"SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

// DashboardConfig carries the stocks API base URL the fetch client is built
// with, plus the dashboard's own listen address.
type DashboardConfig struct {
	Addr       string        `env:"ADDR" envDefault:":3000"`
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Location   string        `env:"LOCATION" envDefault:"UTC"`
	ViewTTL    time.Duration `env:"VIEW_TTL" envDefault:"30m"`
	MaxViews   int           `env:"MAX_VIEWS" envDefault:"10000"`
}

type IngestConfig struct {
	TickersFile  string `env:"TICKERS_FILE" envDefault:"configs/tickers.yaml"`
	YahooBaseURL string `env:"YAHOO_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	Period       string `env:"PERIOD" envDefault:"1d"`
	Interval     string `env:"INTERVAL" envDefault:"1m"`
	Workers      int    `env:"WORKERS" envDefault:"10"`
	BatchSize    int    `env:"BATCH_SIZE" envDefault:"500"`
	Cron         string `env:"CRON"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ValidateAPI checks the sections used by the stocks API.
func (c *Config) ValidateAPI() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DB.Name == "" {
		return errors.New("DB_NAME is required")
	}
	if c.Redis.CacheTTL <= 0 {
		return errors.New("REDIS_CACHE_TTL must be positive")
	}
	return nil
}

// ValidateDashboard checks the sections used by the dashboard.
func (c *Config) ValidateDashboard() error {
	u, err := url.Parse(c.Dashboard.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("DASHBOARD_API_BASE_URL %q is not an absolute URL", c.Dashboard.APIBaseURL)
	}
	if _, err := time.LoadLocation(c.Dashboard.Location); err != nil {
		return fmt.Errorf("DASHBOARD_LOCATION: %w", err)
	}
	if c.Dashboard.Timeout <= 0 {
		return errors.New("DASHBOARD_TIMEOUT must be positive")
	}
	if c.Dashboard.MaxViews <= 0 {
		return errors.New("DASHBOARD_MAX_VIEWS must be positive")
	}
	return nil
}

// ValidateIngest checks the sections used by the loader.
func (c *Config) ValidateIngest() error {
	if c.Ingest.TickersFile == "" {
		return errors.New("INGEST_TICKERS_FILE is required")
	}
	if c.Ingest.Workers <= 0 {
		return errors.New("INGEST_WORKERS must be positive")
	}
	if c.Ingest.BatchSize <= 0 {
		return errors.New("INGEST_BATCH_SIZE must be positive")
	}
	return nil
}

// InitDB opens the PostgreSQL connection.
func InitDB(c DBConfig, environment string) (*gorm.DB, error) {
	level := gormlogger.Warn
	if environment == "development" {
		level = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// InitRedis opens the Redis connection and pings it.
func InitRedis(ctx context.Context, c RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}
