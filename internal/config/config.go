// Package config loads service configuration from .env files, the environment
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Mail        MailConfig        `mapstructure:"mail"`
	Captcha     CaptchaConfig     `mapstructure:"captcha"`
	Admin       AdminConfig       `mapstructure:"admin"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	LeadTimeout     time.Duration `mapstructure:"lead_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// DatabaseConfig: an empty URL selects the in-memory repositories.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig: an empty URL keeps rate-limit windows in process memory.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type RateLimitConfig struct {
	Limit       int           `mapstructure:"limit"`
	Window      time.Duration `mapstructure:"window"`
	BanAfter    int           `mapstructure:"ban_after"`
	BanDuration time.Duration `mapstructure:"ban_duration"`
}

// MailConfig: an empty Host selects the log-only transport.
type MailConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Pass           string        `mapstructure:"pass"`
	From           string        `mapstructure:"from"`
	SalesEmail     string        `mapstructure:"sales_email"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	BackoffBase    time.Duration `mapstructure:"backoff_base"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

type CaptchaConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	VerifyURL string        `mapstructure:"verify_url"`
	MinScore  float64       `mapstructure:"min_score"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// BypassWhenUnconfigured treats every token as valid when SecretKey is empty.
	BypassWhenUnconfigured bool `mapstructure:"bypass_when_unconfigured"`
	// FailOpenOnError treats an unreachable verification service as a pass.
	FailOpenOnError bool `mapstructure:"fail_open_on_error"`
}

type AdminConfig struct {
	Emails      []string `mapstructure:"emails"`
	JWTSecret   string   `mapstructure:"jwt_secret"`
	JWTIssuer   string   `mapstructure:"jwt_issuer"`
	JWTAudience string   `mapstructure:"jwt_audience"`
	// JWKSURL switches login to RS256 tokens verified against a remote key set.
	JWKSURL           string        `mapstructure:"jwks_url"`
	CognitoRegion     string        `mapstructure:"cognito_region"`
	CognitoUserPoolID string        `mapstructure:"cognito_user_pool_id"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
}

type MaintenanceConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// Load reads .env (if present), the environment and the optional file at path.
func Load(path string) (Config, error) {
	// .env is optional in every environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Admin.Emails = normalizeEmails(cfg.Admin.Emails)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.lead_timeout", 12*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.development", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.url", "")

	v.SetDefault("ratelimit.limit", 5)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("ratelimit.ban_after", 0)
	v.SetDefault("ratelimit.ban_duration", 15*time.Minute)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.pass", "")
	v.SetDefault("mail.from", "noreply@gogo.bj")
	v.SetDefault("mail.sales_email", "sales@gogo.bj")
	v.SetDefault("mail.max_attempts", 3)
	v.SetDefault("mail.backoff_base", time.Second)
	v.SetDefault("mail.attempt_timeout", 15*time.Second)

	v.SetDefault("captcha.secret_key", "")
	v.SetDefault("captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.min_score", 0.5)
	v.SetDefault("captcha.timeout", 5*time.Second)
	v.SetDefault("captcha.bypass_when_unconfigured", true)
	v.SetDefault("captcha.fail_open_on_error", false)

	v.SetDefault("admin.emails", []string{})
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.jwt_issuer", "")
	v.SetDefault("admin.jwt_audience", "")
	v.SetDefault("admin.jwks_url", "")
	v.SetDefault("admin.cognito_region", "")
	v.SetDefault("admin.cognito_user_pool_id", "")
	v.SetDefault("admin.session_ttl", time.Hour)
	v.SetDefault("admin.cookie_secure", true)

	v.SetDefault("maintenance.schedule", "@every 10m")
}

// bindLegacyEnv maps the variable names the site has always been deployed with.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port":                {"PORT", "SERVER_PORT"},
		"database.url":               {"DATABASE_URL"},
		"redis.url":                  {"REDIS_URL"},
		"mail.from":                  {"FROM_EMAIL", "MAIL_FROM"},
		"mail.sales_email":           {"SALES_EMAIL", "MAIL_SALES_EMAIL"},
		"captcha.secret_key":         {"RECAPTCHA_SECRET_KEY", "CAPTCHA_SECRET_KEY"},
		"admin.emails":               {"ADMIN_EMAILS", "ADMIN_EMAIL"},
		"admin.jwt_secret":           {"ADMIN_JWT_SECRET"},
		"admin.jwks_url":             {"ADMIN_JWKS_URL"},
		"admin.cognito_region":       {"AWS_REGION", "COGNITO_REGION"},
		"admin.cognito_user_pool_id": {"COGNITO_USER_POOL_ID"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("server.port must be > 0"))
	}
	if c.Server.LeadTimeout <= 0 {
		errs = append(errs, errors.New("server.lead_timeout must be > 0"))
	}
	if c.RateLimit.Limit <= 0 {
		errs = append(errs, errors.New("ratelimit.limit must be > 0"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit.window must be > 0"))
	}
	if c.RateLimit.BanAfter < 0 {
		errs = append(errs, errors.New("ratelimit.ban_after must be >= 0"))
	}
	if c.Mail.MaxAttempts <= 0 {
		errs = append(errs, errors.New("mail.max_attempts must be > 0"))
	}
	if c.Mail.BackoffBase < 0 {
		errs = append(errs, errors.New("mail.backoff_base must be >= 0"))
	}
	if c.Mail.Host != "" && c.Mail.Port <= 0 {
		errs = append(errs, errors.New("mail.port must be > 0 when mail.host is set"))
	}
	if c.Captcha.MinScore < 0 || c.Captcha.MinScore > 1 {
		errs = append(errs, errors.New("captcha.min_score must be within [0,1]"))
	}
	if c.Admin.CognitoUserPoolID != "" && c.Admin.CognitoRegion == "" {
		errs = append(errs, errors.New("admin.cognito_region is required with admin.cognito_user_pool_id"))
	}
	if c.Admin.SessionTTL <= 0 {
		errs = append(errs, errors.New("admin.session_ttl must be > 0"))
	}
	return errors.Join(errs...)
}

// MailMockMode reports whether notifications are only logged.
func (c Config) MailMockMode() bool {
	return c.Mail.Host == ""
}

// AdminLoginEnabled reports whether admin tokens can be verified at all.
func (c Config) AdminLoginEnabled() bool {
	return c.Admin.JWTSecret != "" || c.AdminUsesJWKS()
}

// AdminUsesJWKS reports whether login verifies RS256 tokens against a key set
// rather than HS256 tokens against the shared secret.
func (c Config) AdminUsesJWKS() bool {
	return c.Admin.JWKSURL != "" || c.Admin.CognitoUserPoolID != ""
}
