/**
 * @description
 * This file handles the configuration management for the griffin-service.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	GriffinAPIBaseURL     string        `mapstructure:"GRIFFIN_API_BASE_URL"`
	GriffinAPIKey         string        `mapstructure:"GRIFFIN_API_KEY"`
	GriffinRequestTimeout time.Duration `mapstructure:"GRIFFIN_REQUEST_TIMEOUT"`
	GriffinMaxGetRetries  int           `mapstructure:"GRIFFIN_MAX_GET_RETRIES"`
	AllowLiveAPIKey       bool          `mapstructure:"ALLOW_LIVE_API_KEY"`

	ProvisionPollInterval time.Duration `mapstructure:"PROVISION_POLL_INTERVAL"`
	ProvisionPollTimeout  time.Duration `mapstructure:"PROVISION_POLL_TIMEOUT"`

	ServerPort         string `mapstructure:"SERVER_PORT"`
	APIJWTSecret       string `mapstructure:"API_JWT_SECRET"`
	APIJWTIssuer       string `mapstructure:"API_JWT_ISSUER"`
	APIJWTAudience     string `mapstructure:"API_JWT_AUDIENCE"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	EventsExchange   string `mapstructure:"EVENTS_EXCHANGE"`
	CommandsExchange string `mapstructure:"COMMANDS_EXCHANGE"`
	AccountOpenQueue string `mapstructure:"ACCOUNT_OPEN_QUEUE"`

	RedisURL                  string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix      string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	PaymentRateLimitPerMinute int    `mapstructure:"PAYMENT_RATE_LIMIT_PER_MINUTE"`

	OrphanedPaymentJobSchedule string `mapstructure:"ORPHANED_PAYMENT_JOB_SCHEDULE"`
}

var envKeys = []string{
	"GRIFFIN_API_BASE_URL",
	"GRIFFIN_API_KEY",
	"GRIFFIN_REQUEST_TIMEOUT",
	"GRIFFIN_MAX_GET_RETRIES",
	"ALLOW_LIVE_API_KEY",
	"PROVISION_POLL_INTERVAL",
	"PROVISION_POLL_TIMEOUT",
	"SERVER_PORT",
	"API_JWT_SECRET",
	"API_JWT_ISSUER",
	"API_JWT_AUDIENCE",
	"CORS_ALLOWED_ORIGINS",
	"DATABASE_URL",
	"RABBITMQ_URL",
	"EVENTS_EXCHANGE",
	"COMMANDS_EXCHANGE",
	"ACCOUNT_OPEN_QUEUE",
	"REDIS_URL",
	"REDIS_RATE_LIMIT_PREFIX",
	"PAYMENT_RATE_LIMIT_PER_MINUTE",
	"ORPHANED_PAYMENT_JOB_SCHEDULE",
}

// LoadConfig reads configuration from file or environment variables. It validates what
// every entry point needs; the HTTP service additionally calls ValidateServer.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("GRIFFIN_API_BASE_URL", "https://api.griffin.com")
	viper.SetDefault("GRIFFIN_REQUEST_TIMEOUT", "30s")
	viper.SetDefault("GRIFFIN_MAX_GET_RETRIES", 3)
	viper.SetDefault("ALLOW_LIVE_API_KEY", false)
	viper.SetDefault("PROVISION_POLL_INTERVAL", "1s")
	viper.SetDefault("PROVISION_POLL_TIMEOUT", "10s")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://*,http://*")
	viper.SetDefault("EVENTS_EXCHANGE", "griffin.events")
	viper.SetDefault("COMMANDS_EXCHANGE", "griffin.commands")
	viper.SetDefault("ACCOUNT_OPEN_QUEUE", "griffin_service.account_open_requests")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "griffin:rate_limit")
	viper.SetDefault("PAYMENT_RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("ORPHANED_PAYMENT_JOB_SCHEDULE", "*/15 * * * *")

	// Bind envs explicitly so containers pick them up reliably
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.GriffinAPIBaseURL = strings.TrimSuffix(strings.TrimSpace(config.GriffinAPIBaseURL), "/")
	config.GriffinAPIKey = strings.TrimSpace(config.GriffinAPIKey)
	if config.GriffinAPIKey == "" {
		return nil, fmt.Errorf("GRIFFIN_API_KEY must be provided")
	}
	if config.GriffinRequestTimeout <= 0 {
		return nil, fmt.Errorf("GRIFFIN_REQUEST_TIMEOUT must be positive, got %s", config.GriffinRequestTimeout)
	}
	if config.GriffinMaxGetRetries < 0 {
		return nil, fmt.Errorf("GRIFFIN_MAX_GET_RETRIES must not be negative, got %d", config.GriffinMaxGetRetries)
	}
	if config.ProvisionPollInterval <= 0 {
		return nil, fmt.Errorf("PROVISION_POLL_INTERVAL must be positive, got %s", config.ProvisionPollInterval)
	}
	if config.ProvisionPollTimeout <= 0 {
		return nil, fmt.Errorf("PROVISION_POLL_TIMEOUT must be positive, got %s", config.ProvisionPollTimeout)
	}
	if config.PaymentRateLimitPerMinute <= 0 {
		config.PaymentRateLimitPerMinute = 30
	}

	return &config, nil
}

// ValidateServer checks the settings only the HTTP service needs.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.APIJWTSecret) == "" {
		return fmt.Errorf("API_JWT_SECRET must be provided")
	}
	if strings.TrimSpace(c.ServerPort) == "" {
		return fmt.Errorf("SERVER_PORT must be provided")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
