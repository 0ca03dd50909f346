package config

const EnvPrefix = "CYD"

const (
	AppEnvDev  = "dev"
	AppEnvTest = "test"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CYD_APP_ENV"
	EnvPort     = "CYD_APP_PORT"
	EnvLogLevel = "CYD_LOG_LEVEL"

	EnvDBDSN  = "CYD_DB_DSN"
	EnvDBHost = "CYD_DB_HOST"
	EnvDBUser = "CYD_DB_USER"
	EnvDBName = "CYD_DB_NAME"

	EnvRedisURL = "CYD_REDIS_URL"

	EnvJWTSecret              = "CYD_JWT_SECRET"
	EnvJWTIssuer              = "CYD_JWT_ISSUER"
	EnvJWTExpMins             = "CYD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "CYD_REFRESH_TOKEN_TTL_MINUTES"

	EnvStorageUploadDir   = "CYD_STORAGE_UPLOAD_DIR"
	EnvStorageMaxUploadMB = "CYD_STORAGE_MAX_UPLOAD_MB"

	EnvCronInterval = "CYD_CRON_INTERVAL"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
