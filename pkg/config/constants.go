package config

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "keepsake"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "KEEPSAKE_APP_ENV"
	EnvDBDSN  = "KEEPSAKE_DB_DSN"
	EnvDBHost = "KEEPSAKE_DB_HOST"
	EnvDBUser = "KEEPSAKE_DB_USER"
	EnvDBName = "KEEPSAKE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
