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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Guest         GuestConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	SMTP          SMTPConfig
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
	Env          string `envconfig:"KEEPSAKE_APP_ENV" required:"true"`
	Port         string `envconfig:"KEEPSAKE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"KEEPSAKE_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"KEEPSAKE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KEEPSAKE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KEEPSAKE_DB_DSN"`
	Driver string `envconfig:"KEEPSAKE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KEEPSAKE_DB_HOST"`
	LegacyPort     int    `envconfig:"KEEPSAKE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KEEPSAKE_DB_USER"`
	LegacyPassword string `envconfig:"KEEPSAKE_DB_PASSWORD"`
	LegacyName     string `envconfig:"KEEPSAKE_DB_NAME"`
	LegacySSLMode  string `envconfig:"KEEPSAKE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KEEPSAKE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KEEPSAKE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KEEPSAKE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KEEPSAKE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KEEPSAKE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KEEPSAKE_REDIS_ADDR"`
	Password     string        `envconfig:"KEEPSAKE_REDIS_PASSWORD"`
	DB           int           `envconfig:"KEEPSAKE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KEEPSAKE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KEEPSAKE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KEEPSAKE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KEEPSAKE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KEEPSAKE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"KEEPSAKE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"KEEPSAKE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"KEEPSAKE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"KEEPSAKE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KEEPSAKE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KEEPSAKE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KEEPSAKE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KEEPSAKE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KEEPSAKE_ARGON_KEY_LEN" default:"32"`

	ResetTokenTTL time.Duration `envconfig:"KEEPSAKE_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KEEPSAKE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KEEPSAKE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KEEPSAKE_AUTO_MIGRATE" default:"false"`
}

// GuestConfig governs the anonymous cart identity cookie.
type GuestConfig struct {
	CookieName string        `envconfig:"KEEPSAKE_GUEST_COOKIE_NAME" default:"guestId"`
	CookieTTL  time.Duration `envconfig:"KEEPSAKE_GUEST_COOKIE_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KEEPSAKE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"KEEPSAKE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KEEPSAKE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"KEEPSAKE_PUBSUB_NOTIFICATION_TOPIC" default:"keepsake-notification-events"`
	NotificationSubscription string `envconfig:"KEEPSAKE_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"keepsake-notification-worker"`
	OrdersTopic              string `envconfig:"KEEPSAKE_PUBSUB_ORDERS_TOPIC" default:"keepsake-order-events"`
	OrdersSubscription       string `envconfig:"KEEPSAKE_PUBSUB_ORDERS_SUBSCRIPTION" default:"keepsake-order-worker"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KEEPSAKE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KEEPSAKE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KEEPSAKE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"KEEPSAKE_CRON_INTERVAL" default:"5m"`
	LockKey  string        `envconfig:"KEEPSAKE_CRON_LOCK_KEY" default:"cron:leader"`
	LockTTL  time.Duration `envconfig:"KEEPSAKE_CRON_LOCK_TTL" default:"10m"`
}

type SMTPConfig struct {
	Host        string `envconfig:"KEEPSAKE_SMTP_HOST"`
	Port        int    `envconfig:"KEEPSAKE_SMTP_PORT" default:"587"`
	Username    string `envconfig:"KEEPSAKE_SMTP_USERNAME"`
	Password    string `envconfig:"KEEPSAKE_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"KEEPSAKE_SMTP_FROM_EMAIL" default:"no-reply@keepsake.shop"`
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
