package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Token        TokenConfig
	RateLimit    RateLimitConfig
	Cron         CronConfig
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
	if err := cfg.Token.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.RateLimit.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env               string        `envconfig:"LICENSEGATE_APP_ENV" required:"true"`
	Port              string        `envconfig:"LICENSEGATE_APP_PORT" default:"8080"`
	LogLevel          string        `envconfig:"LICENSEGATE_LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"LICENSEGATE_LOG_FORMAT" default:"json"`
	LogWarnStack      bool          `envconfig:"LICENSEGATE_LOG_WARN_STACK" default:"false"`
	ReadHeaderTimeout time.Duration `envconfig:"LICENSEGATE_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"LICENSEGATE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"LICENSEGATE_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"LICENSEGATE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LICENSEGATE_DB_DSN"`
	Driver string `envconfig:"LICENSEGATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LICENSEGATE_DB_HOST"`
	LegacyPort     int    `envconfig:"LICENSEGATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LICENSEGATE_DB_USER"`
	LegacyPassword string `envconfig:"LICENSEGATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LICENSEGATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LICENSEGATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LICENSEGATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LICENSEGATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LICENSEGATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LICENSEGATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"LICENSEGATE_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"LICENSEGATE_REDIS_URL"`
	Address      string        `envconfig:"LICENSEGATE_REDIS_ADDR"`
	Password     string        `envconfig:"LICENSEGATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LICENSEGATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LICENSEGATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LICENSEGATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LICENSEGATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LICENSEGATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LICENSEGATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type TokenConfig struct {
	Secret           string `envconfig:"LICENSEGATE_TOKEN_SECRET" required:"true"`
	ExpiresInSeconds int64  `envconfig:"LICENSEGATE_TOKEN_EXPIRES_IN" default:"86400"`
}

// TTL returns the configured site token lifetime.
func (t TokenConfig) TTL() time.Duration {
	return time.Duration(t.ExpiresInSeconds) * time.Second
}

func (t TokenConfig) validate() error {
	if strings.TrimSpace(t.Secret) == "" {
		return fmt.Errorf("%s must not be blank", EnvTokenSecret)
	}
	if t.ExpiresInSeconds <= 0 {
		return fmt.Errorf("%s must be positive", EnvTokenExpiresIn)
	}
	return nil
}

type RateLimitConfig struct {
	ValidateWindow  time.Duration `envconfig:"LICENSEGATE_RATE_LIMIT_VALIDATE_WINDOW" default:"1m"`
	ValidateIPLimit int           `envconfig:"LICENSEGATE_RATE_LIMIT_VALIDATE_IP_LIMIT" default:"60"`
	TrustedProxies  []string      `envconfig:"LICENSEGATE_TRUSTED_PROXIES"`
}

// TrustedProxyPrefixes parses TrustedProxies. Entries are CIDRs or bare addresses.
func (r RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid entry %q: %w", EnvTrustedProxies, entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid entry %q: %w", EnvTrustedProxies, entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"LICENSEGATE_CRON_INTERVAL" default:"1h"`
	AuditRetentionDays int           `envconfig:"LICENSEGATE_AUDIT_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool     `envconfig:"LICENSEGATE_AUTO_MIGRATE" default:"false"`
	CORSOrigins []string `envconfig:"LICENSEGATE_CORS_ORIGINS"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
