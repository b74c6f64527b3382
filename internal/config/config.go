// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// TrustedProxyHops is how many X-Forwarded-For entries, counted from
	// the right, come from infrastructure we control. 0 means the header
	// is ignored entirely and the socket address is used.
	TrustedProxyHops int `koanf:"trusted_proxy_hops"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret          string        `koanf:"secret"`
	SessionTokenTTL time.Duration `koanf:"session_token_ttl"`
	Issuer          string        `koanf:"issuer"`
	Audience        string        `koanf:"audience"`
}

type AuthConfig struct {
	// InvitationCode gates self-registration. Empty means the gate is
	// open and anyone may register.
	InvitationCode    string        `koanf:"invitation_code"`
	RequireActivation bool          `koanf:"require_activation"`
	ActivationTTL     time.Duration `koanf:"activation_ttl"`
}

type RateLimitConfig struct {
	Window           time.Duration `koanf:"window"`
	Requests         int           `koanf:"requests"`
	LoginRequests    int           `koanf:"login_requests"`
	RegisterRequests int           `koanf:"register_requests"`

	// Global GCRA limiter sitting in front of the whole router.
	GlobalRequests int `koanf:"global_requests"`
	GlobalBurst    int `koanf:"global_burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Load reads defaults, then the optional yaml file, then environment
// overrides, and validates the result. The config is constructed once in
// main and passed by reference; there is no package-level instance.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "jobtrack",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":               "0.0.0.0",
		"server.port":               8080,
		"server.read_timeout":       "30s",
		"server.write_timeout":      "30s",
		"server.idle_timeout":       "120s",
		"server.shutdown_timeout":   "15s",
		"server.trusted_proxy_hops": 1,

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"jwt.session_token_ttl": "60m",
		"jwt.issuer":            "jobtrack",
		"jwt.audience":          "jobtrack-api",

		"auth.require_activation": false,
		"auth.activation_ttl":     "24h",

		"rate_limit.window":            "60s",
		"rate_limit.requests":          120,
		"rate_limit.login_requests":    5,
		"rate_limit.register_requests": 3,
		"rate_limit.global_requests":   600,
		"rate_limit.global_burst":      100,

		"cors.allowed_origins": []string{"http://localhost:4200"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-CSRF-Token",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "jobtrack",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                 "database.url",
	"REDIS_URL":                    "redis.url",
	"ENVIRONMENT":                  "app.environment",
	"HOST":                         "server.host",
	"PORT":                         "server.port",
	"TRUSTED_PROXY_HOPS":           "server.trusted_proxy_hops",
	"LOG_LEVEL":                    "log.level",
	"LOG_FORMAT":                   "log.format",
	"JWT_SECRET":                   "jwt.secret",
	"JWT_SESSION_TOKEN_TTL":        "jwt.session_token_ttl",
	"JWT_ISSUER":                   "jwt.issuer",
	"JWT_AUDIENCE":                 "jwt.audience",
	"INVITATION_CODE":              "auth.invitation_code",
	"REQUIRE_ACTIVATION":           "auth.require_activation",
	"ACTIVATION_TTL":               "auth.activation_ttl",
	"RATE_LIMIT_WINDOW":            "rate_limit.window",
	"RATE_LIMIT_REQUESTS":          "rate_limit.requests",
	"RATE_LIMIT_LOGIN_REQUESTS":    "rate_limit.login_requests",
	"RATE_LIMIT_REGISTER_REQUESTS": "rate_limit.register_requests",
	"OTEL_ENDPOINT":                "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT":  "otel.endpoint",
	"OTEL_SERVICE_NAME":            "otel.service_name",
	"OTEL_ENABLED":                 "otel.enabled",
	"OTEL_INSECURE":                "otel.insecure",
	"OTEL_SAMPLE_RATE":             "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

func validate(c *Config) error {
	// The signing secret is the one setting the process must never run
	// without: fail-fast here, not fail-open at request time.
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("JWT_SECRET is required and must not be blank")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.SessionTokenTTL <= 0 {
		return fmt.Errorf("jwt.session_token_ttl must be positive")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}

	if c.Server.TrustedProxyHops < 0 {
		return fmt.Errorf("server.trusted_proxy_hops must not be negative")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
