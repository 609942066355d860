package config

const EnvPrefix = "SHOPHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	StateBackendRedis  = "redis"
	StateBackendMemory = "memory"
)

const (
	EnvAppEnv          = "SHOPHUB_APP_ENV"
	EnvPort            = "SHOPHUB_APP_PORT"
	EnvLogLevel        = "SHOPHUB_LOG_LEVEL"
	EnvCatalogBaseURL  = "SHOPHUB_CATALOG_BASE_URL"
	EnvCatalogTimeout  = "SHOPHUB_CATALOG_TIMEOUT"
	EnvItemsPerPage    = "SHOPHUB_ITEMS_PER_PAGE"
	EnvTaxRate         = "SHOPHUB_TAX_RATE"
	EnvCoupons         = "SHOPHUB_COUPONS"
	EnvDBDSN           = "SHOPHUB_DB_DSN"
	EnvDBHost          = "SHOPHUB_DB_HOST"
	EnvDBUser          = "SHOPHUB_DB_USER"
	EnvDBName          = "SHOPHUB_DB_NAME"
	EnvRedisURL        = "SHOPHUB_REDIS_URL"
	EnvStateBackend    = "SHOPHUB_STATE_BACKEND"
	EnvUseSQLite       = "SHOPHUB_USE_SQLITE"
	EnvAuthTokenSecret = "SHOPHUB_AUTH_TOKEN_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
