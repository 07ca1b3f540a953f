package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/axeyQ/restropos-backend/pkg/types"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Restaurant   RestaurantConfig
	Tax          TaxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Tax.Rules(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RESTRO_APP_ENV" required:"true"`
	Port         string `envconfig:"RESTRO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RESTRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RESTRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RESTRO_DB_DSN"`
	Driver string `envconfig:"RESTRO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RESTRO_DB_HOST"`
	Port     int    `envconfig:"RESTRO_DB_PORT" default:"5432"`
	User     string `envconfig:"RESTRO_DB_USER"`
	Password string `envconfig:"RESTRO_DB_PASSWORD"`
	Name     string `envconfig:"RESTRO_DB_NAME"`
	SSLMode  string `envconfig:"RESTRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RESTRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RESTRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RESTRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RESTRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RESTRO_REDIS_URL"`
	Address      string        `envconfig:"RESTRO_REDIS_ADDR"`
	Password     string        `envconfig:"RESTRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"RESTRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RESTRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RESTRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RESTRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RESTRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RESTRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RESTRO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RESTRO_AUTO_MIGRATE" default:"false"`
}

// RestaurantConfig carries the outlet identity printed onto invoices.
type RestaurantConfig struct {
	Name      string `envconfig:"RESTRO_RESTAURANT_NAME" required:"true"`
	Address   string `envconfig:"RESTRO_RESTAURANT_ADDRESS"`
	City      string `envconfig:"RESTRO_RESTAURANT_CITY"`
	Phone     string `envconfig:"RESTRO_RESTAURANT_PHONE"`
	Email     string `envconfig:"RESTRO_RESTAURANT_EMAIL"`
	TaxID     string `envconfig:"RESTRO_RESTAURANT_GSTIN"`
	LicenseID string `envconfig:"RESTRO_RESTAURANT_FSSAI"`
}

// Details returns the snapshot InvoiceService copies verbatim onto invoices.
func (r RestaurantConfig) Details() types.RestaurantDetails {
	return types.RestaurantDetails{
		Name:      r.Name,
		Address:   r.Address,
		City:      r.City,
		Phone:     r.Phone,
		Email:     r.Email,
		TaxID:     r.TaxID,
		LicenseID: r.LicenseID,
	}
}

// TaxConfig holds the configured tax rule set as a comma-separated
// "NAME=RATE" list, e.g. "CGST=2.5,SGST=2.5".
type TaxConfig struct {
	RuleSpec string `envconfig:"RESTRO_TAX_RULES" default:"CGST=2.5,SGST=2.5"`
}

// Rules parses RuleSpec into the tax rules the pricing calculator applies.
func (t TaxConfig) Rules() ([]types.TaxRule, error) {
	spec := strings.TrimSpace(t.RuleSpec)
	if spec == "" {
		return nil, nil
	}

	var rules []types.TaxRule
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rate, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid tax rule %q (expected NAME=RATE)", part)
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return nil, fmt.Errorf("invalid tax rate in %q: %w", part, err)
		}
		if parsed.IsNegative() {
			return nil, fmt.Errorf("tax rate in %q must not be negative", part)
		}
		rules = append(rules, types.TaxRule{
			Name: strings.TrimSpace(name),
			Rate: parsed,
		})
	}
	return rules, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
