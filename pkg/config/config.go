package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BUFFERSTOCK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvDBDSN  = "BUFFERSTOCK_DB_DSN"
	EnvDBHost = "BUFFERSTOCK_DB_HOST"
	EnvDBUser = "BUFFERSTOCK_DB_USER"
	EnvDBName = "BUFFERSTOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Operators     OperatorsConfig
	Stock         StockConfig
	Reports       ReportsConfig
	Reconcile     ReconcileConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"BUFFERSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"BUFFERSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BUFFERSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUFFERSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BUFFERSTOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BUFFERSTOCK_DB_DSN"`
	Driver string `envconfig:"BUFFERSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BUFFERSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"BUFFERSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BUFFERSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"BUFFERSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"BUFFERSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"BUFFERSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUFFERSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BUFFERSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BUFFERSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUFFERSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver was selected (local/dev setups).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BUFFERSTOCK_REDIS_URL"`
	Address      string        `envconfig:"BUFFERSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"BUFFERSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BUFFERSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BUFFERSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BUFFERSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BUFFERSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BUFFERSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BUFFERSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BUFFERSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BUFFERSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BUFFERSTOCK_JWT_EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BUFFERSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BUFFERSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BUFFERSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BUFFERSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BUFFERSTOCK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BUFFERSTOCK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginOperatorLimit int           `envconfig:"BUFFERSTOCK_AUTH_RATE_LIMIT_LOGIN_OPERATOR_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BUFFERSTOCK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// OperatorsConfig declares the fixed operator accounts. Entries are separated
// by '|' and formatted as name:role:argon2id-hash; argon hashes contain '$'
// and ',' so neither can be used as a separator.
type OperatorsConfig struct {
	Spec string `envconfig:"BUFFERSTOCK_OPERATORS"`
}

// Operator is a parsed operator account entry.
type Operator struct {
	Name         string
	Role         string
	PasswordHash string
}

// Parse splits the operator spec into typed entries.
func (o OperatorsConfig) Parse() ([]Operator, error) {
	spec := strings.TrimSpace(o.Spec)
	if spec == "" {
		return nil, nil
	}
	var operators []Operator
	for _, entry := range strings.Split(spec, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.SplitN(entry, ":", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid operator entry %q (want name:role:hash)", entry)
		}
		operators = append(operators, Operator{
			Name:         strings.TrimSpace(fields[0]),
			Role:         strings.ToLower(strings.TrimSpace(fields[1])),
			PasswordHash: strings.TrimSpace(fields[2]),
		})
	}
	return operators, nil
}

type StockConfig struct {
	LockWaitTimeout time.Duration `envconfig:"BUFFERSTOCK_STOCK_LOCK_WAIT_TIMEOUT" default:"5s"`
}

type ReportsConfig struct {
	LowStockThreshold    int           `envconfig:"BUFFERSTOCK_REPORTS_LOW_STOCK_THRESHOLD" default:"5"`
	ReorderPeriod        time.Duration `envconfig:"BUFFERSTOCK_REPORTS_REORDER_PERIOD" default:"168h"`
	ReorderWindowPeriods int           `envconfig:"BUFFERSTOCK_REPORTS_REORDER_WINDOW_PERIODS" default:"12"`
}

type ReconcileConfig struct {
	Interval time.Duration `envconfig:"BUFFERSTOCK_RECONCILE_INTERVAL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUFFERSTOCK_AUTO_MIGRATE" default:"false"`
	SeedDemo    bool `envconfig:"BUFFERSTOCK_SEED_DEMO" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:bufferstock.db?_pragma=busy_timeout(5000)"
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
