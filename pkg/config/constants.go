package config

// EnvPrefix is the namespace applied to every environment variable.
const EnvPrefix = "INVENTRA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "INVENTRA_DB_DSN"
	EnvDBHost = "INVENTRA_DB_HOST"
	EnvDBUser = "INVENTRA_DB_USER"
	EnvDBName = "INVENTRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
