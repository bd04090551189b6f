package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Sync     SyncConfig
	AutoSync AutoSyncConfig
	Outbox   OutboxConfig
	PubSub   PubSubConfig
	GCP      GCPConfig
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
	Env          string `envconfig:"MENUSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"MENUSYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MENUSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MENUSYNC_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"MENUSYNC_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MENUSYNC_DB_DSN"`
	Driver string `envconfig:"MENUSYNC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MENUSYNC_DB_HOST"`
	Port     int    `envconfig:"MENUSYNC_DB_PORT" default:"5432"`
	User     string `envconfig:"MENUSYNC_DB_USER"`
	Password string `envconfig:"MENUSYNC_DB_PASSWORD"`
	Name     string `envconfig:"MENUSYNC_DB_NAME"`
	SSLMode  string `envconfig:"MENUSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MENUSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MENUSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MENUSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MENUSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MENUSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MENUSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"MENUSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"MENUSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MENUSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MENUSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MENUSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MENUSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MENUSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MENUSYNC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MENUSYNC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MENUSYNC_JWT_EXPIRATION_MINUTES" default:"60"`
}

// SyncConfig tunes the sync engine itself.
type SyncConfig struct {
	BulkWorkers   int           `envconfig:"MENUSYNC_SYNC_BULK_WORKERS" default:"4"`
	BranchLockTTL time.Duration `envconfig:"MENUSYNC_SYNC_BRANCH_LOCK_TTL" default:"2m"`
}

// AutoSyncConfig tunes the sync-worker binary.
type AutoSyncConfig struct {
	Interval time.Duration `envconfig:"MENUSYNC_AUTOSYNC_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"MENUSYNC_AUTOSYNC_LOCK_TTL" default:"4m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MENUSYNC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MENUSYNC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MENUSYNC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"MENUSYNC_PUBSUB_DOMAIN_TOPIC" default:"menusync-domain-events"`
	DomainSubscription string `envconfig:"MENUSYNC_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MENUSYNC_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"MENUSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
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
