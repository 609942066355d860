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
	Catalog       CatalogConfig
	Storefront    StorefrontConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	DB            DBConfig
	Redis         RedisConfig
	State         StateConfig
	FeatureFlags  FeatureFlagsConfig
	Metrics       MetricsConfig
}

// MetricsConfig controls the prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `envconfig:"SHOPHUB_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"SHOPHUB_METRICS_PATH" default:"/metrics"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.State.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SHOPHUB_APP_ENV" required:"true"`
	Port         string   `envconfig:"SHOPHUB_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SHOPHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"SHOPHUB_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"SHOPHUB_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"SHOPHUB_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points at the upstream product catalog.
type CatalogConfig struct {
	BaseURL       string        `envconfig:"SHOPHUB_CATALOG_BASE_URL" default:"https://fakestoreapi.com"`
	Timeout       time.Duration `envconfig:"SHOPHUB_CATALOG_TIMEOUT" default:"15s"`
	RetryAttempts int           `envconfig:"SHOPHUB_CATALOG_RETRY_ATTEMPTS" default:"3"`
	RetryBase     time.Duration `envconfig:"SHOPHUB_CATALOG_RETRY_BASE" default:"1s"`
	RetryMax      time.Duration `envconfig:"SHOPHUB_CATALOG_RETRY_MAX" default:"30s"`
	StaleTime     time.Duration `envconfig:"SHOPHUB_CATALOG_STALE_TIME" default:"5m"`
}

type StorefrontConfig struct {
	PageSize              int                `envconfig:"SHOPHUB_ITEMS_PER_PAGE" default:"9"`
	TaxRate               float64            `envconfig:"SHOPHUB_TAX_RATE" default:"0.18"`
	ShippingCost          float64            `envconfig:"SHOPHUB_SHIPPING_COST" default:"5.99"`
	FreeShippingThreshold float64            `envconfig:"SHOPHUB_FREE_SHIPPING_THRESHOLD" default:"100"`
	Coupons               map[string]float64 `envconfig:"SHOPHUB_COUPONS" default:"WELCOME10:10,SAVE20:20"`
	PaymentDelay          time.Duration      `envconfig:"SHOPHUB_PAYMENT_DELAY" default:"1500ms"`
	DeliveryWindow        time.Duration      `envconfig:"SHOPHUB_DELIVERY_WINDOW" default:"168h"`
	CollationLocale       string             `envconfig:"SHOPHUB_COLLATION_LOCALE" default:"en"`
	BrowseIdleTTL         time.Duration      `envconfig:"SHOPHUB_BROWSE_IDLE_TTL" default:"30m"`
}

// AuthConfig only signs the mock tokens handed out on register.
type AuthConfig struct {
	TokenSecret string        `envconfig:"SHOPHUB_AUTH_TOKEN_SECRET" default:"shophub-dev-secret"`
	TokenIssuer string        `envconfig:"SHOPHUB_AUTH_TOKEN_ISSUER" default:"shophub"`
	TokenTTL    time.Duration `envconfig:"SHOPHUB_AUTH_TOKEN_TTL" default:"24h"`
}

// AuthRateLimitConfig throttles login and register attempts per IP and per email.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPHUB_AUTH_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"SHOPHUB_AUTH_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"SHOPHUB_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"SHOPHUB_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"SHOPHUB_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"SHOPHUB_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}

type DBConfig struct {
	DSN        string `envconfig:"SHOPHUB_DB_DSN"`
	Driver     string `envconfig:"SHOPHUB_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"SHOPHUB_SQLITE_PATH" default:"shophub.db"`

	LegacyHost     string `envconfig:"SHOPHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPHUB_DB_USER"`
	LegacyPassword string `envconfig:"SHOPHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SHOPHUB_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPHUB_REDIS_URL"`
	Address      string        `envconfig:"SHOPHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StateConfig selects where session state (cart, wishlist, auth record) lives.
type StateConfig struct {
	Backend string        `envconfig:"SHOPHUB_STATE_BACKEND" default:"redis"`
	TTL     time.Duration `envconfig:"SHOPHUB_STATE_TTL" default:"720h"`
}

func (s StateConfig) UsesRedis() bool {
	return strings.EqualFold(s.Backend, StateBackendRedis)
}

func (s StateConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StateBackendRedis, StateBackendMemory:
		return nil
	}
	return fmt.Errorf("%s must be one of %q or %q", EnvStateBackend, StateBackendRedis, StateBackendMemory)
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"SHOPHUB_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"SHOPHUB_AUTO_MIGRATE" default:"false"`
	CatalogCache   bool `envconfig:"SHOPHUB_CATALOG_CACHE" default:"true"`
	RequireIdemKey bool `envconfig:"SHOPHUB_REQUIRE_IDEMPOTENCY_KEY" default:"true"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// Dialect returns the goose dialect for the configured database.
func (db DBConfig) Dialect() string {
	if db.IsSQLite() {
		return "sqlite3"
	}
	return "postgres"
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() || db.DSN != "" {
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
