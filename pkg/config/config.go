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

	EnvDBDSN  = "CKO_DB_DSN"
	EnvDBHost = "CKO_DB_HOST"
	EnvDBUser = "CKO_DB_USER"
	EnvDBName = "CKO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Statuses  StatusConfig
	Retention RetentionConfig
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
	Env          string `envconfig:"CKO_APP_ENV" required:"true"`
	Port         string `envconfig:"CKO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CKO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CKO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CKO_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CKO_DB_DSN"`

	LegacyHost     string `envconfig:"CKO_DB_HOST"`
	LegacyPort     int    `envconfig:"CKO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CKO_DB_USER"`
	LegacyPassword string `envconfig:"CKO_DB_PASSWORD"`
	LegacyName     string `envconfig:"CKO_DB_NAME"`
	LegacySSLMode  string `envconfig:"CKO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CKO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CKO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CKO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CKO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CKO_REDIS_URL"`
	Address      string        `envconfig:"CKO_REDIS_ADDR"`
	Password     string        `envconfig:"CKO_REDIS_PASSWORD"`
	DB           int           `envconfig:"CKO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CKO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CKO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CKO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CKO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CKO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CheckoutConfig carries the processor credentials. Account type decides the
// signing key shape: NAS accounts sign webhooks with "Bearer <secret>", ABC
// accounts with the bare secret.
type CheckoutConfig struct {
	SecretKey   string        `envconfig:"CKO_SECRET_KEY" required:"true"`
	AccountType string        `envconfig:"CKO_ACCOUNT_TYPE" default:"nas"`
	BaseURL     string        `envconfig:"CKO_API_BASE_URL" default:"https://api.checkout.com"`
	HTTPTimeout time.Duration `envconfig:"CKO_API_TIMEOUT" default:"30s"`
}

// IsNAS reports whether the configured account uses the NAS platform.
func (c CheckoutConfig) IsNAS() bool {
	return strings.EqualFold(strings.TrimSpace(c.AccountType), "nas")
}

// SigningKey returns the HMAC key used to verify inbound webhook signatures.
func (c CheckoutConfig) SigningKey() string {
	if c.IsNAS() {
		return "Bearer " + c.SecretKey
	}
	return c.SecretKey
}

// AuthorizationHeader returns the Authorization value for outbound API calls.
func (c CheckoutConfig) AuthorizationHeader() string {
	if c.IsNAS() {
		return "Bearer " + c.SecretKey
	}
	return c.SecretKey
}

// StatusConfig maps payment lifecycle events to order statuses, standing in
// for the plugin's admin-configured status options.
type StatusConfig struct {
	Authorized string `envconfig:"CKO_STATUS_AUTHORIZED" default:"on-hold"`
	Captured   string `envconfig:"CKO_STATUS_CAPTURED" default:"processing"`
	Void       string `envconfig:"CKO_STATUS_VOID" default:"cancelled"`
}

type RetentionConfig struct {
	ProcessedDays   int           `envconfig:"CKO_RETENTION_PROCESSED_DAYS" default:"7"`
	UnprocessedDays int           `envconfig:"CKO_RETENTION_UNPROCESSED_DAYS" default:"7"`
	SweepInterval   time.Duration `envconfig:"CKO_RETENTION_SWEEP_INTERVAL" default:"24h"`
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
