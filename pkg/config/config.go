package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Reports      ReportsConfig
	Cohorts      CohortsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALONPULSE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SALONPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALONPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SALONPULSE_SERVICE_KIND" default:"aggregate-reports"`
}

type DBConfig struct {
	DSN    string `envconfig:"SALONPULSE_DB_DSN"`
	Driver string `envconfig:"SALONPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALONPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"SALONPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALONPULSE_DB_USER"`
	LegacyPassword string `envconfig:"SALONPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALONPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALONPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALONPULSE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SALONPULSE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SALONPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALONPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ReportsConfig locates the monthly usage-report exports and the dataset
// artifact the aggregation run produces.
type ReportsConfig struct {
	Dir         string `envconfig:"SALONPULSE_REPORTS_DIR" default:"data/reports"`
	DatasetPath string `envconfig:"SALONPULSE_DATASET_PATH" default:"data/market-intelligence.json"`
	Country     string `envconfig:"SALONPULSE_REPORTS_COUNTRY"`
}

// CohortsConfig drives the loyalty cohort rebuild.
type CohortsConfig struct {
	Country     string `envconfig:"SALONPULSE_COHORT_COUNTRY" default:"israel"`
	WindowsFile string `envconfig:"SALONPULSE_COHORT_WINDOWS_FILE"`
	CreatedBy   string `envconfig:"SALONPULSE_COHORT_CREATED_BY" default:"pipeline"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SALONPULSE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
