package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	APIKey        APIKeyConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Cron          CronConfig
	Notifications NotificationsConfig
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
	Env          string `envconfig:"DISPATCHDAY_APP_ENV" required:"true"`
	Port         string `envconfig:"DISPATCHDAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISPATCHDAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISPATCHDAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DISPATCHDAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DISPATCHDAY_DB_DSN"`
	Driver string `envconfig:"DISPATCHDAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DISPATCHDAY_DB_HOST"`
	LegacyPort     int    `envconfig:"DISPATCHDAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DISPATCHDAY_DB_USER"`
	LegacyPassword string `envconfig:"DISPATCHDAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"DISPATCHDAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"DISPATCHDAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISPATCHDAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISPATCHDAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISPATCHDAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISPATCHDAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISPATCHDAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISPATCHDAY_REDIS_ADDR"`
	Password     string        `envconfig:"DISPATCHDAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISPATCHDAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISPATCHDAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISPATCHDAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISPATCHDAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISPATCHDAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISPATCHDAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DISPATCHDAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DISPATCHDAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DISPATCHDAY_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the configured admin token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type APIKeyConfig struct {
	ArgonMemoryKB    int `envconfig:"DISPATCHDAY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DISPATCHDAY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DISPATCHDAY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DISPATCHDAY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DISPATCHDAY_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	CheckoutWindow     time.Duration `envconfig:"DISPATCHDAY_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutStoreLimit int           `envconfig:"DISPATCHDAY_RATE_LIMIT_CHECKOUT_STORE_LIMIT" default:"120"`
	CheckoutIPLimit    int           `envconfig:"DISPATCHDAY_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"300"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DISPATCHDAY_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	SettingsCacheTTL time.Duration `envconfig:"DISPATCHDAY_CHECKOUT_SETTINGS_CACHE_TTL" default:"30s"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"DISPATCHDAY_CRON_INTERVAL" default:"24h"`
	ReminderLeadDays int           `envconfig:"DISPATCHDAY_CRON_REMINDER_LEAD_DAYS" default:"1"`
}

type NotificationsConfig struct {
	RetentionDays int `envconfig:"DISPATCHDAY_NOTIFICATION_RETENTION_DAYS" default:"30"`
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
