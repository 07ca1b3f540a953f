package config

// EnvPrefix scopes every environment variable the engine reads.
const EnvPrefix = "RESTRO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "RESTRO_DB_DSN"
	EnvDBHost = "RESTRO_DB_HOST"
	EnvDBUser = "RESTRO_DB_USER"
	EnvDBName = "RESTRO_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
