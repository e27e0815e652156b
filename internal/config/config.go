package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
	External ExternalConfig `mapstructure:"external" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}

// JobsConfig contains settings for the background job runner that delivers
// task assignment email notifications.
type JobsConfig struct {
	QueueSize           int `mapstructure:"queue_size"            validate:"required,gt=0"`
	WorkerCount         int `mapstructure:"worker_count"          validate:"required,gt=0"`
	StuckJobAgeMinutes  int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
}

// RealtimeConfig contains settings for the websocket fanout subsystem.
type RealtimeConfig struct {
	// SendBufferSize is the per-connection outbound buffer. When a
	// broadcast finds the buffer full, the connection is treated as a
	// slow consumer and disconnected.
	SendBufferSize int `mapstructure:"send_buffer_size" validate:"required,gt=0"`

	// AllowedOrigins lists the origins accepted during the websocket
	// handshake. An empty list or a "*" entry accepts any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExternalConfig contains settings for the external todo source merged into
// the /api/external-tasks endpoint.
type ExternalConfig struct {
	TodosURL       string `mapstructure:"todos_url"       validate:"required,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}
