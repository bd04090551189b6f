package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "MENUSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "MENUSYNC_APP_ENV"
	EnvPort      = "MENUSYNC_APP_PORT"
	EnvDBDSN     = "MENUSYNC_DB_DSN"
	EnvDBHost    = "MENUSYNC_DB_HOST"
	EnvDBUser    = "MENUSYNC_DB_USER"
	EnvDBName    = "MENUSYNC_DB_NAME"
	EnvRedisURL  = "MENUSYNC_REDIS_URL"
	EnvJWTSecret = "MENUSYNC_JWT_SECRET"
	EnvJWTIssuer = "MENUSYNC_JWT_ISSUER"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
