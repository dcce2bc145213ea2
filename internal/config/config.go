package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Rollover policies for the subscription "+1 month" end date. The intended
// behavior for month-end start dates is unspecified upstream, so it is
// carried as configuration instead of a hardcoded rule.
const (
	RolloverCalendar = "calendar" // Go AddDate normalization (Jan 31 -> Mar 2/3)
	RolloverClamp    = "clamp"    // clamp to the last day of the target month
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseWebAPIKey                string `mapstructure:"FIREBASE_WEB_API_KEY"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	RedisAddress                     string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword                    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int    `mapstructure:"REDIS_DB"`
	RabbitMQURL                      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue                    string `mapstructure:"RABBITMQ_QUEUE"`
	SMTPHost                         string `mapstructure:"SMTP_HOST"`
	SMTPPort                         string `mapstructure:"SMTP_PORT"`
	SMTPUser                         string `mapstructure:"SMTP_USER"`
	SMTPPassword                     string `mapstructure:"SMTP_PASSWORD"`
	MailSender                       string `mapstructure:"MAIL_SENDER"`
	SubscriptionRollover             string `mapstructure:"SUBSCRIPTION_ROLLOVER"`
	ReconcileSchedule                string `mapstructure:"RECONCILE_SCHEDULE"`
}

var appConfig *Config

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("RABBITMQ_QUEUE", "calmme.payments")
	viper.SetDefault("SUBSCRIPTION_ROLLOVER", RolloverCalendar)
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 5m")

	for _, key := range []string{
		"PORT", "GIN_MODE",
		"FIREBASE_PROJECT_ID", "FIREBASE_WEB_API_KEY",
		"GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"CLIENT_URL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"RABBITMQ_URL", "RABBITMQ_QUEUE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "MAIL_SENDER",
		"SUBSCRIPTION_ROLLOVER", "RECONCILE_SCHEDULE",
	} {
		viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.FirebaseWebAPIKey == "" {
		return nil, errors.New("FIREBASE_WEB_API_KEY is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.SubscriptionRollover != RolloverCalendar && cfg.SubscriptionRollover != RolloverClamp {
		return nil, errors.New("SUBSCRIPTION_ROLLOVER must be 'calendar' or 'clamp'")
	}

	appConfig = &cfg
	return appConfig, nil
}

// GetConfig returns the loaded application configuration.
// It panics if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
