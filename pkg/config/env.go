package config

// EnvPrefix is empty because every variable carries its full LICENSEGATE_ name in the
// envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "LICENSEGATE_APP_ENV"
	EnvPort     = "LICENSEGATE_APP_PORT"
	EnvLogLevel = "LICENSEGATE_LOG_LEVEL"

	EnvDBDSN    = "LICENSEGATE_DB_DSN"
	EnvDBDriver = "LICENSEGATE_DB_DRIVER"
	EnvDBHost   = "LICENSEGATE_DB_HOST"
	EnvDBUser   = "LICENSEGATE_DB_USER"
	EnvDBName   = "LICENSEGATE_DB_NAME"

	EnvRedisURL = "LICENSEGATE_REDIS_URL"

	EnvTokenSecret    = "LICENSEGATE_TOKEN_SECRET"
	EnvTokenExpiresIn = "LICENSEGATE_TOKEN_EXPIRES_IN"

	EnvRateLimitValidateWindow  = "LICENSEGATE_RATE_LIMIT_VALIDATE_WINDOW"
	EnvRateLimitValidateIPLimit = "LICENSEGATE_RATE_LIMIT_VALIDATE_IP_LIMIT"
	EnvTrustedProxies           = "LICENSEGATE_TRUSTED_PROXIES"

	EnvCORSOrigins = "LICENSEGATE_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
