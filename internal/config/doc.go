// Package config defines the application configuration structure and loads
// it from environment variables and optional config files using viper.
// Loaded configuration is validated before use.
package config
