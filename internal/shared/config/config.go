package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address        string          `mapstructure:"address"`
	ReadTimeout    time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration   `mapstructure:"idle_timeout"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
	SecureCookies  bool            `mapstructure:"secure_cookies"`
	IdempotencyTTL time.Duration   `mapstructure:"idempotency_ttl"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds per-endpoint request limits. A zero limit disables
// limiting for that group of endpoints.
type RateLimitConfig struct {
	CheckoutLimit int           `mapstructure:"checkout_limit"`
	CallbackLimit int           `mapstructure:"callback_limit"`
	Window        time.Duration `mapstructure:"window"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_token_expiry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CheckoutConfig holds checkout and payment method configuration.
type CheckoutConfig struct {
	EnabledPaymentMethods []PaymentMethodConfig `mapstructure:"enabled_payment_methods"`
	MaxPaymentMethods     int                   `mapstructure:"max_payment_methods"`
	FraudChecks           []FraudCheckConfig    `mapstructure:"fraud_checks"`
	SigningSecret         string                `mapstructure:"signing_secret"`
	TokenTTL              time.Duration         `mapstructure:"token_ttl"`
	StateStore            string                `mapstructure:"state_store"` // redis, memory
	StateTTL              time.Duration         `mapstructure:"state_ttl"`
	DataCacheTTL          time.Duration         `mapstructure:"data_cache_ttl"`
	ValidateCachedData    bool                  `mapstructure:"validate_cached_data"`
}

// PaymentMethodConfig enables one payment method.
type PaymentMethodConfig struct {
	Method           string         `mapstructure:"method"`
	Permission       string         `mapstructure:"permission"`
	MethodKwargs     map[string]any `mapstructure:"method_kwargs"`
	PermissionKwargs map[string]any `mapstructure:"permission_kwargs"`
}

// FraudCheckConfig enables one fraud rule.
type FraudCheckConfig struct {
	Rule   string         `mapstructure:"rule"`
	Kwargs map[string]any `mapstructure:"kwargs"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom loads configuration using v, which may already carry overrides.
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/checkout")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables
	v.SetEnvPrefix("CHECKOUT")
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("CHECKOUT_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if secret := os.Getenv("CHECKOUT_SIGNING_SECRET"); secret != "" {
		cfg.Checkout.SigningSecret = secret
	}
	if password := os.Getenv("CHECKOUT_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("CHECKOUT_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	if c.Checkout.SigningSecret == "" {
		return fmt.Errorf("checkout.signing_secret is required")
	}
	switch c.Checkout.StateStore {
	case "redis", "memory":
	default:
		return fmt.Errorf("checkout.state_store must be redis or memory, got %q", c.Checkout.StateStore)
	}
	if len(c.Checkout.EnabledPaymentMethods) == 0 {
		return fmt.Errorf("checkout.enabled_payment_methods must list at least one method")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.idempotency_ttl", 24*time.Hour)
	v.SetDefault("server.rate_limit.checkout_limit", 30)
	v.SetDefault("server.rate_limit.callback_limit", 60)
	v.SetDefault("server.rate_limit.window", time.Minute)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "checkout")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Auth defaults
	v.SetDefault("auth.access_token_expiry", 15*time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Checkout defaults
	v.SetDefault("checkout.enabled_payment_methods", []map[string]any{
		{"method": "cash", "permission": "public"},
		{"method": "pay-later", "permission": "public"},
	})
	v.SetDefault("checkout.max_payment_methods", 0)
	v.SetDefault("checkout.token_ttl", time.Duration(0))
	v.SetDefault("checkout.state_store", "redis")
	v.SetDefault("checkout.state_ttl", 24*time.Hour)
	v.SetDefault("checkout.data_cache_ttl", 24*time.Hour)
	v.SetDefault("checkout.validate_cached_data", true)
}
