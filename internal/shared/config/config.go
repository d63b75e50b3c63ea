package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// JWT configuration (device and ops service tokens)
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Parking engine configuration
	Parking ParkingConfig

	// Logging
	LogLevel string

	// Email configuration
	Email EmailConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// Snapshot TTL; 0 keeps the latest snapshot forever
	SnapshotTTL time.Duration
}

// KafkaConfig holds Kafka configuration for the command and notification topics
type KafkaConfig struct {
	Enabled           bool
	Brokers           []string
	CommandTopic      string
	NotificationTopic string
	ConsumerGroup     string
	ProducerRetryMax  int
	ProducerTimeout   time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	EventRequests   int           `json:"event_requests"`
	PublicRequests  int           `json:"public_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
}

// ParkingConfig holds the allocation engine's weights, facility grid and
// reservation policy. Defaults match the reference facility.
type ParkingConfig struct {
	// Cost model weights
	DriveWeight  float64
	WalkWeight   float64
	FloorPenalty float64
	ParkTime     float64

	// Fixed map positions
	GateRow     int
	GateCol     int
	ElevatorRow int
	ElevatorCol int

	// Facility grid: floors are below ground (-1..-Floors)
	Floors int
	Rows   int
	Cols   int

	// Reservation eviction policy. When ScaleWithEstimate is set the timer is
	// armed with the computed travel estimate instead of the flat TTL.
	EvictionTTL               time.Duration
	EvictionScaleWithEstimate bool
}

// EmailConfig holds SMTP configuration for driver notifications
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "parkwise_db"),
			User:     getEnv("DB_USER", "parkwise_user"),
			Password: getEnv("DB_PASSWORD", "parkwise_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			SnapshotTTL: getDurationEnv("REDIS_SNAPSHOT_TTL", 0),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Enabled:           getBoolEnv("KAFKA_ENABLED", true),
			Brokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			CommandTopic:      getEnv("KAFKA_COMMAND_TOPIC", "parking.commands"),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "parking.notifications"),
			ConsumerGroup:     getEnv("KAFKA_CONSUMER_GROUP", "parkwise-notification-workers"),
			ProducerRetryMax:  getIntEnv("KAFKA_PRODUCER_RETRY_MAX", 3),
			ProducerTimeout:   getDurationEnv("KAFKA_PRODUCER_TIMEOUT", 10*time.Second),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			EventRequests:   getIntEnv("RATE_LIMIT_EVENT_REQUESTS", 300),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 120),
		},

		// Parking engine
		Parking: ParkingConfig{
			DriveWeight:  getFloatEnv("PARKING_DRIVE_WEIGHT", 1.0),
			WalkWeight:   getFloatEnv("PARKING_WALK_WEIGHT", 4.5),
			FloorPenalty: getFloatEnv("PARKING_FLOOR_PENALTY", 6.0),
			ParkTime:     getFloatEnv("PARKING_PARK_TIME", 5.0),

			GateRow:     getIntEnv("PARKING_GATE_ROW", 0),
			GateCol:     getIntEnv("PARKING_GATE_COL", 0),
			ElevatorRow: getIntEnv("PARKING_ELEVATOR_ROW", 2),
			ElevatorCol: getIntEnv("PARKING_ELEVATOR_COL", 4),

			Floors: getIntEnv("PARKING_FLOORS", 3),
			Rows:   getIntEnv("PARKING_ROWS", 4),
			Cols:   getIntEnv("PARKING_COLS", 5),

			EvictionTTL:               getDurationEnv("PARKING_EVICTION_TTL", 60*time.Second),
			EvictionScaleWithEstimate: getBoolEnv("PARKING_EVICTION_SCALE_WITH_ESTIMATE", false),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Email configuration
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@parkwise.io"),
		},
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
