package config

// EnvPrefix scopes every environment variable consumed by the pipeline.
const EnvPrefix = "SALONPULSE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside envconfig tags (tests, error
// messages).
const (
	EnvAppEnv     = "SALONPULSE_APP_ENV"
	EnvDBDSN      = "SALONPULSE_DB_DSN"
	EnvDBHost     = "SALONPULSE_DB_HOST"
	EnvDBUser     = "SALONPULSE_DB_USER"
	EnvDBName     = "SALONPULSE_DB_NAME"
	EnvReportsDir = "SALONPULSE_REPORTS_DIR"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
