package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, if present, a
// config.yaml file in the working directory. Environment variables use the
// TASKHIVE_ prefix with underscores for nesting (TASKHIVE_SERVER_PORT,
// TASKHIVE_DATABASE_URL, ...) and take precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound
	// explicitly.
	for key, envVar := range map[string]string{
		"database.url":    "TASKHIVE_DATABASE_URL",
		"auth.jwt_secret": "TASKHIVE_AUTH_JWT_SECRET",
	} {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", envVar, err)
		}
	}

	// A missing config file is fine; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values so a minimal environment (just
// TASKHIVE_DATABASE_URL and TASKHIVE_AUTH_JWT_SECRET) produces a runnable
// configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days
	v.SetDefault("auth.bcrypt_cost", 0)                        // 0 selects bcrypt.DefaultCost

	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.stuck_job_age_minutes", 30)

	v.SetDefault("realtime.send_buffer_size", 16)
	v.SetDefault("realtime.allowed_origins", []string{})

	v.SetDefault("external.todos_url", "https://jsonplaceholder.typicode.com/todos")
	v.SetDefault("external.timeout_seconds", 10)
}
