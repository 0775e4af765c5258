package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOCKPILOT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKPILOT_DB_DSN"
	EnvDBHost = "STOCKPILOT_DB_HOST"
	EnvDBUser = "STOCKPILOT_DB_USER"
	EnvDBName = "STOCKPILOT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maps         MapsConfig
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
	Env          string `envconfig:"STOCKPILOT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKPILOT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKPILOT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKPILOT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STOCKPILOT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKPILOT_DB_DSN"`
	Driver string `envconfig:"STOCKPILOT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKPILOT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKPILOT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKPILOT_DB_USER"`
	LegacyPassword string `envconfig:"STOCKPILOT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKPILOT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKPILOT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKPILOT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKPILOT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKPILOT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKPILOT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKPILOT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKPILOT_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKPILOT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKPILOT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKPILOT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKPILOT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKPILOT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKPILOT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKPILOT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOCKPILOT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOCKPILOT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STOCKPILOT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STOCKPILOT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKPILOT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKPILOT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKPILOT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKPILOT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKPILOT_ARGON_KEY_LEN" default:"32"`
}

type WebhookConfig struct {
	// TTL of the externalId dedupe marker for inbound sales events.
	IdempotencyTTL time.Duration `envconfig:"STOCKPILOT_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKPILOT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOCKPILOT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOCKPILOT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOCKPILOT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	StockTopic string `envconfig:"STOCKPILOT_PUBSUB_STOCK_TOPIC" default:"sp-stock-events"`
}

type MapsConfig struct {
	// Google Places API key. Leave empty to disable address geocoding.
	APIKey string `envconfig:"STOCKPILOT_MAPS_API_KEY"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STOCKPILOT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STOCKPILOT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STOCKPILOT_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
