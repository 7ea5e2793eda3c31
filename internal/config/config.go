package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	Firebase  FirebaseConfig  `yaml:"firebase"`
	Auth      AuthConfig      `yaml:"auth"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Events    EventsConfig    `yaml:"events"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains gRPC and HTTP listener settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	GRPCPort        int    `yaml:"grpc_port"`
	HTTPPort        int    `yaml:"http_port"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// StoreConfig selects the persistent store backend
type StoreConfig struct {
	Type string `yaml:"type"` // "memory", "postgres" or "firestore"
	Seed bool   `yaml:"seed"` // memory only: start with the sample listings
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// FirebaseConfig contains the Firebase project used for Firestore, Auth and Storage
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	StorageBucket   string `yaml:"storage_bucket"`
}

// AuthConfig selects which bearer tokens are accepted
type AuthConfig struct {
	Provider string `yaml:"provider"` // "local", "firebase" or "both"
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// StorageConfig contains image storage settings
type StorageConfig struct {
	Type         string   `yaml:"type"`       // "local" or "firebase"
	UploadDir    string   `yaml:"upload_dir"` // local only
	BaseURL      string   `yaml:"base_url"`   // public HTTP address used in local file URLs
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// EventsConfig selects the change-feed broker
type EventsConfig struct {
	Type             string      `yaml:"type"` // "local" or "redis"
	Channel          string      `yaml:"channel"`
	SubscriberBuffer int         `yaml:"subscriber_buffer"`
	Redis            RedisConfig `yaml:"redis"`
}

// RedisConfig contains go-redis connection settings
type RedisConfig struct {
	URL      string `yaml:"url"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// EmailConfig contains SendGrid settings. An empty API key logs e-mails instead of sending them.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	// InProcess runs the rental jobs inside the server instead of cmd/cronjob.
	// Required for the memory store, whose state is not shared between processes.
	InProcess              bool   `yaml:"in_process"`
	ActivateStartedRentals string `yaml:"activate_started_rentals"`
	CompleteEndedRentals   string `yaml:"complete_ended_rentals"`
}

// Load reads configuration from a YAML file. Variables from a .env file in the
// working directory are loaded first; the process environment wins over both.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("GRPC_PORT", &c.Server.GRPCPort)
	envInt("HTTP_PORT", &c.Server.HTTPPort)

	// Store
	envString("STORE_TYPE", &c.Store.Type)
	envBool("STORE_SEED", &c.Store.Seed)

	// Database
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)
	envBool("DB_AUTO_MIGRATE", &c.Database.AutoMigrate)

	// Firebase
	envString("FIREBASE_PROJECT_ID", &c.Firebase.ProjectID)
	envString("GOOGLE_APPLICATION_CREDENTIALS", &c.Firebase.CredentialsFile)
	envString("FIREBASE_STORAGE_BUCKET", &c.Firebase.StorageBucket)

	// Auth
	envString("AUTH_PROVIDER", &c.Auth.Provider)
	envString("JWT_SECRET", &c.JWT.Secret)

	// Storage
	envString("STORAGE_TYPE", &c.Storage.Type)
	envString("UPLOAD_DIR", &c.Storage.UploadDir)
	envString("STORAGE_BASE_URL", &c.Storage.BaseURL)

	// Events
	envString("EVENTS_TYPE", &c.Events.Type)
	envString("REDIS_URL", &c.Events.Redis.URL)
	envString("REDIS_ADDRESS", &c.Events.Redis.Address)
	envString("REDIS_PASSWORD", &c.Events.Redis.Password)

	// Email
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	envString("EMAIL_FROM", &c.Email.From)

	// Scheduler
	envBool("SCHEDULER_IN_PROCESS", &c.Scheduler.InProcess)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)
}

// Validate fills defaults and checks if the configuration is valid
func (c *Config) Validate() error {
	c.applyDefaults()

	// Server validation
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("gRPC and HTTP ports must differ")
	}

	// Store validation
	switch c.Store.Type {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case "firestore":
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required for the firestore store")
		}
	default:
		return fmt.Errorf("unknown store type: %q", c.Store.Type)
	}

	// Auth validation
	switch c.Auth.Provider {
	case "local", "both":
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
	case "firebase":
	default:
		return fmt.Errorf("unknown auth provider: %q", c.Auth.Provider)
	}
	if c.Auth.Provider != "local" && c.Firebase.ProjectID == "" {
		return fmt.Errorf("firebase project id is required for firebase auth")
	}

	// Storage validation
	switch c.Storage.Type {
	case "local":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "firebase":
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("firebase storage bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}

	// Events validation
	switch c.Events.Type {
	case "local":
	case "redis":
		if c.Events.Redis.URL == "" && c.Events.Redis.Address == "" {
			return fmt.Errorf("redis url or address is required")
		}
	default:
		return fmt.Errorf("unknown events type: %q", c.Events.Type)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 50051
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = c.Server.GRPCPort + 1
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Auth.Provider == "" {
		c.Auth.Provider = "local"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.HTTPPort)
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 5
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if c.Events.Type == "" {
		c.Events.Type = "local"
	}
	if c.Events.Channel == "" {
		c.Events.Channel = "alugaai:events"
	}
	if c.Events.SubscriberBuffer == 0 {
		c.Events.SubscriberBuffer = 64
	}
	if c.Email.From == "" {
		c.Email.From = "no-reply@aluga.ai"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "aluga.ai"
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Scheduler.ActivateStartedRentals == "" {
		c.Scheduler.ActivateStartedRentals = "0 5 0 * * *" // daily at 00:05 UTC
	}
	if c.Scheduler.CompleteEndedRentals == "" {
		c.Scheduler.CompleteEndedRentals = "0 10 0 * * *" // daily at 00:10 UTC
	}
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// MaxUploadBytes is the image size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Storage.MaxFileSize << 20
}

// UsesFirebase reports whether any component needs a Firebase app
func (c *Config) UsesFirebase() bool {
	return c.Store.Type == "firestore" || c.Auth.Provider != "local" || c.Storage.Type == "firebase"
}
