package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Chatbot      ChatbotConfig      `mapstructure:"chatbot"`
	Lookup       LookupConfig       `mapstructure:"lookup"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Reporting    ReportingConfig    `mapstructure:"reporting"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// ChatbotConfig configures the Telegram transport.
// Mode is either "polling" (long polling, the default) or "webhook".
type ChatbotConfig struct {
	Token           string `mapstructure:"token"`
	Mode            string `mapstructure:"mode"`
	WebhookURL      string `mapstructure:"webhook_url"`
	Timeout         int    `mapstructure:"timeout"`
	WorkerCount     int    `mapstructure:"worker_count"`
	MaxRetries      int    `mapstructure:"max_retries"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	Timezone        string `mapstructure:"timezone"`
}

// ProviderConfig configures a single BIN lookup provider.
// Timeout is in seconds. An empty APIKey disables key-gated providers.
type ProviderConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`
}

// LookupConfig holds the ordered provider list for BIN lookups.
type LookupConfig struct {
	Order     []string       `mapstructure:"order"`
	UserAgent string         `mapstructure:"user_agent"`
	Binlist   ProviderConfig `mapstructure:"binlist"`
	HandyAPI  ProviderConfig `mapstructure:"handyapi"`
	APILayer  ProviderConfig `mapstructure:"apilayer"`
}

// SubscriptionConfig configures the newsletter helper. Target is the catalog
// key used by /subs; when Endpoint is empty no automated submission is made.
type SubscriptionConfig struct {
	Target       string `mapstructure:"target"`
	Endpoint     string `mapstructure:"endpoint"`
	Encoding     string `mapstructure:"encoding"`
	EmailField   string `mapstructure:"email_field"`
	ConsentField string `mapstructure:"consent_field"`
	Timeout      int    `mapstructure:"timeout"`
}

// RateLimitConfig enables the per-chat lookup limiter when RedisAddr is set.
type RateLimitConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	PerMinute     int    `mapstructure:"per_minute"`
}

type ReportingConfig struct {
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.Chatbot.Token == "" {
		return NewConfigurationError("chatbot.token", "telegram bot token is required", "")
	}
	switch c.Chatbot.Mode {
	case ModePolling, ModeWebhook:
	default:
		return NewConfigurationError("chatbot.mode", "must be polling or webhook", c.Chatbot.Mode)
	}
	if c.Chatbot.Mode == ModeWebhook && c.Chatbot.WebhookURL == "" {
		return NewConfigurationError("chatbot.webhook_url", "required in webhook mode", "")
	}
	if c.Chatbot.WorkerCount <= 0 {
		return NewConfigurationError("chatbot.worker_count", "must be greater than 0", fmt.Sprint(c.Chatbot.WorkerCount))
	}
	return nil
}

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// ConfigurationError represents a missing or invalid setting
type ConfigurationError struct {
	Field  string
	Reason string
	Value  string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field %s: %s (value: %s)", e.Field, e.Reason, e.Value)
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, reason, value string) error {
	return ConfigurationError{
		Field:  field,
		Reason: reason,
		Value:  value,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.mode", ModePolling)
	v.SetDefault("chatbot.webhook_url", "")
	v.SetDefault("chatbot.timeout", 60)
	v.SetDefault("chatbot.worker_count", 4)
	v.SetDefault("chatbot.max_retries", 5)
	v.SetDefault("chatbot.shutdown_timeout", 10)
	v.SetDefault("chatbot.timezone", "UTC")

	v.SetDefault("lookup.order", []string{"binlist", "handyapi", "apilayer"})
	v.SetDefault("lookup.user_agent", "binbot/1.0")
	v.SetDefault("lookup.binlist.endpoint", "https://lookup.binlist.net")
	v.SetDefault("lookup.binlist.api_key", "")
	v.SetDefault("lookup.binlist.timeout", 5)
	v.SetDefault("lookup.handyapi.endpoint", "https://data.handyapi.com/bin")
	v.SetDefault("lookup.handyapi.api_key", "")
	v.SetDefault("lookup.handyapi.timeout", 5)
	v.SetDefault("lookup.apilayer.endpoint", "https://api.apilayer.com/bincheck")
	v.SetDefault("lookup.apilayer.api_key", "")
	v.SetDefault("lookup.apilayer.timeout", 8)

	v.SetDefault("subscription.target", "guardian")
	v.SetDefault("subscription.endpoint", "")
	v.SetDefault("subscription.encoding", "json")
	v.SetDefault("subscription.email_field", "email")
	v.SetDefault("subscription.consent_field", "consent")
	v.SetDefault("subscription.timeout", 10)

	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.redis_password", "")
	v.SetDefault("ratelimit.redis_db", 0)
	v.SetDefault("ratelimit.per_minute", 10)

	v.SetDefault("reporting.sentry_dsn", "")
	v.SetDefault("reporting.environment", "development")
	v.SetDefault("reporting.release", "")
}
