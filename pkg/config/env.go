package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "dispatchday"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISPATCHDAY_DB_DSN"
	EnvDBHost = "DISPATCHDAY_DB_HOST"
	EnvDBUser = "DISPATCHDAY_DB_USER"
	EnvDBName = "DISPATCHDAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
