package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every CareCoord environment variable.
const EnvPrefix = "CARECOORD"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	Bus      BusConfig
	Email    EmailConfig
	SMS      SMSConfig
	Delivery DeliveryConfig
	Worker   WorkerConfig
	Features FeatureFlags
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARECOORD_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"CARECOORD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARECOORD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARECOORD_SERVICE_KIND" default:"notification-worker"`
}

type DBConfig struct {
	DSN string `envconfig:"CARECOORD_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"CARECOORD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARECOORD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARECOORD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARECOORD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARECOORD_REDIS_URL"`
	Address      string        `envconfig:"CARECOORD_REDIS_ADDR"`
	Password     string        `envconfig:"CARECOORD_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARECOORD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARECOORD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARECOORD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARECOORD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARECOORD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARECOORD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// BusConfig drives the pub/sub event bus and consumer dedupe behavior.
type BusConfig struct {
	TopicPrefix    string        `envconfig:"CARECOORD_BUS_TOPIC_PREFIX" default:"carecoord"`
	IdempotencyTTL time.Duration `envconfig:"CARECOORD_BUS_IDEMPOTENCY_TTL" default:"24h"`
}

type EmailConfig struct {
	APIKey      string `envconfig:"CARECOORD_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"CARECOORD_SENDGRID_FROM_EMAIL" default:"care@atriumcare.example"`
	BaseURL     string `envconfig:"CARECOORD_SENDGRID_BASE_URL" default:"https://api.sendgrid.com/v3"`
}

type SMSConfig struct {
	AccountSID string `envconfig:"CARECOORD_TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"CARECOORD_TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"CARECOORD_TWILIO_FROM_NUMBER"`
	BaseURL    string `envconfig:"CARECOORD_TWILIO_BASE_URL" default:"https://api.twilio.com/2010-04-01"`
}

// DeliveryConfig bounds per-channel adapter calls.
type DeliveryConfig struct {
	RequestTimeout time.Duration `envconfig:"CARECOORD_DELIVERY_REQUEST_TIMEOUT" default:"10s"`
	MaxAttempts    int           `envconfig:"CARECOORD_DELIVERY_MAX_ATTEMPTS" default:"3"`
	InitialBackoff time.Duration `envconfig:"CARECOORD_DELIVERY_INITIAL_BACKOFF" default:"250ms"`
	MaximumBackoff time.Duration `envconfig:"CARECOORD_DELIVERY_MAXIMUM_BACKOFF" default:"2s"`
	JitterFactor   float64       `envconfig:"CARECOORD_DELIVERY_JITTER_FACTOR" default:"0.2"`
}

// FeatureFlags toggles optional behavior, mostly dev conveniences.
type FeatureFlags struct {
	AutoMigrate bool `envconfig:"CARECOORD_FEATURE_AUTO_MIGRATE" default:"false"`
}

type WorkerConfig struct {
	HTTPPort           string        `envconfig:"CARECOORD_WORKER_HTTP_PORT" default:"8090"`
	PreferenceCacheTTL time.Duration `envconfig:"CARECOORD_PREFERENCE_CACHE_TTL" default:"5m"`
	ShutdownGrace      time.Duration `envconfig:"CARECOORD_WORKER_SHUTDOWN_GRACE" default:"10s"`
}
