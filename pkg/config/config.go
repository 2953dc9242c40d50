package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GSATPOS_DB_DSN"
	EnvDBHost = "GSATPOS_DB_HOST"
	EnvDBUser = "GSATPOS_DB_USER"
	EnvDBName = "GSATPOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	Basket       BasketConfig
	Scan         ScanConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GSATPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"GSATPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GSATPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GSATPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GSATPOS_DB_DSN"`
	Driver string `envconfig:"GSATPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GSATPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"GSATPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GSATPOS_DB_USER"`
	LegacyPassword string `envconfig:"GSATPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GSATPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GSATPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GSATPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GSATPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GSATPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GSATPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GSATPOS_REDIS_URL"`
	Address      string        `envconfig:"GSATPOS_REDIS_ADDR"`
	Password     string        `envconfig:"GSATPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GSATPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GSATPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GSATPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GSATPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GSATPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GSATPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	SnapshotTTL time.Duration `envconfig:"GSATPOS_CATALOG_SNAPSHOT_TTL" default:"5m"`
}

type BasketConfig struct {
	SessionTTL     time.Duration `envconfig:"GSATPOS_BASKET_SESSION_TTL" default:"4h"`
	IdempotencyTTL time.Duration `envconfig:"GSATPOS_BASKET_IDEMPOTENCY_TTL" default:"24h"`
}

type ScanConfig struct {
	StreamBuffer int `envconfig:"GSATPOS_SCAN_STREAM_BUFFER" default:"64"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GSATPOS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GSATPOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
