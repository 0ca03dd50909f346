package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	Checkout      CheckoutConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !c.App.IsDev() && !c.App.IsProd() && !strings.EqualFold(c.App.Env, AppEnvTest) {
		return fmt.Errorf("%s must be one of %s, %s, %s (got %q)", EnvAppEnv, AppEnvDev, AppEnvTest, AppEnvProd, c.App.Env)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if c.Storage.MaxUploadMB <= 0 {
		return fmt.Errorf("%s must be positive", EnvStorageMaxUploadMB)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"CYD_APP_ENV" required:"true"`
	Port         string `envconfig:"CYD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CYD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CYD_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"CYD_LOG_FORMAT" default:"json"`
	CORSOrigins  string `envconfig:"CYD_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"CYD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"CYD_DB_DSN"`

	Host     string `envconfig:"CYD_DB_HOST"`
	Port     int    `envconfig:"CYD_DB_PORT" default:"5432"`
	User     string `envconfig:"CYD_DB_USER"`
	Password string `envconfig:"CYD_DB_PASSWORD"`
	Name     string `envconfig:"CYD_DB_NAME"`
	SSLMode  string `envconfig:"CYD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CYD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CYD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CYD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CYD_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"CYD_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CYD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CYD_REDIS_ADDR"`
	Password     string        `envconfig:"CYD_REDIS_PASSWORD"`
	DB           int           `envconfig:"CYD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CYD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CYD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CYD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CYD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CYD_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"CYD_REDIS_KEY_PREFIX" default:"cyd"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CYD_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CYD_JWT_ISSUER" default:"cyd-shop"`
	ExpirationMinutes      int    `envconfig:"CYD_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"CYD_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CYD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CYD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CYD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CYD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CYD_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CYD_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CYD_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CYD_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CYD_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CYD_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CYD_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate        bool `envconfig:"CYD_AUTO_MIGRATE" default:"false"`
	AllowAdminRegister bool `envconfig:"CYD_ALLOW_ADMIN_REGISTER" default:"false"`
}

type StorageConfig struct {
	UploadDir    string `envconfig:"CYD_STORAGE_UPLOAD_DIR" default:"uploads"`
	PublicPrefix string `envconfig:"CYD_STORAGE_PUBLIC_PREFIX" default:"/uploads"`
	MaxUploadMB  int    `envconfig:"CYD_STORAGE_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"CYD_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"CYD_CRON_INTERVAL" default:"1h"`
	AbandonedCartDays int           `envconfig:"CYD_CRON_ABANDONED_CART_DAYS" default:"30"`
	OrphanUploadGrace time.Duration `envconfig:"CYD_CRON_ORPHAN_UPLOAD_GRACE" default:"24h"`
	// MetricsAddr serves /metrics from the worker when set, e.g. ":9102".
	MetricsAddr string `envconfig:"CYD_CRON_METRICS_ADDR"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
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
