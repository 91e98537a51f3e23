package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Database  DatabaseConfig  `yaml:"database" validate:"required"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt" validate:"required"`
	Log       LogConfig       `yaml:"log"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Schedules ScheduleConfig  `yaml:"schedules"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" validate:"required,numeric"`
	GinMode        string   `yaml:"gin_mode" validate:"oneof=debug release test"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	HubQueueSize   int      `yaml:"hub_queue_size" validate:"gt=0"`
	RequestTimeout int      `yaml:"request_timeout_seconds" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=postgres memory"`
	Host     string `yaml:"host" validate:"required_if=Driver postgres"`
	Port     string `yaml:"port" validate:"omitempty,numeric"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

// DSN is the lib/pq key=value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// RedisConfig is optional; an empty Addr keeps push and locking in-process.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Channel  string `yaml:"channel"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type JWTConfig struct {
	Secret      string `yaml:"secret" validate:"required"`
	ExpiryHours int    `yaml:"expiry_hours" validate:"gt=0"`
}

func (j JWTConfig) TTL() time.Duration { return time.Duration(j.ExpiryHours) * time.Hour }

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=text json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

type JobsConfig struct {
	NotificationCleanup   bool `yaml:"notification_cleanup"`
	RetentionHours        int  `yaml:"notification_retention_hours" validate:"gt=0"`
	CleanupTimeoutSeconds int  `yaml:"cleanup_timeout_seconds" validate:"gt=0"`
}

func (j JobsConfig) Retention() time.Duration {
	return time.Duration(j.RetentionHours) * time.Hour
}

func (j JobsConfig) CleanupTimeout() time.Duration {
	return time.Duration(j.CleanupTimeoutSeconds) * time.Second
}

type ScheduleConfig struct {
	TripDeletePolicy string `yaml:"trip_delete_policy" validate:"oneof=orphan cascade"`
}

// BootstrapConfig names an admin account created at startup when missing.
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password" validate:"required_with=AdminUsername"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "debug",
			AllowedOrigins: []string{"*"},
			HubQueueSize:   256,
			RequestTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "password",
			Name:     "fleet",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Redis: RedisConfig{Channel: "fleet:push"},
		JWT: JWTConfig{
			Secret:      "supersecret",
			ExpiryHours: 72,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "./logs/app.log",
			MaxSizeMB:  10,
			MaxBackups: 7,
			MaxAgeDays: 7,
		},
		Jobs: JobsConfig{
			NotificationCleanup:   true,
			RetentionHours:        24,
			CleanupTimeoutSeconds: 60,
		},
		Schedules: ScheduleConfig{TripDeletePolicy: "orphan"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order, then validates it. path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	cfg := defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.GinMode, "GIN_MODE")
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setInt(&cfg.Server.HubQueueSize, "HUB_QUEUE_SIZE")
	setInt(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT_SECONDS")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.TimeZone, "DB_TIMEZONE")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setString(&cfg.Redis.Channel, "REDIS_CHANNEL")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.ExpiryHours, "JWT_EXPIRY_HOURS")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Log.File, "LOG_FILE")

	setBool(&cfg.Jobs.NotificationCleanup, "NOTIFICATION_CLEANUP_ENABLED")
	setInt(&cfg.Jobs.RetentionHours, "NOTIFICATION_RETENTION_HOURS")
	setInt(&cfg.Jobs.CleanupTimeoutSeconds, "NOTIFICATION_CLEANUP_TIMEOUT_SECONDS")

	setString(&cfg.Schedules.TripDeletePolicy, "TRIP_DELETE_POLICY")

	setString(&cfg.Bootstrap.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.Bootstrap.AdminPassword, "ADMIN_PASSWORD")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("Ignoring non-numeric value %q", v)
		return
	}
	*dst = n
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("Ignoring non-boolean value %q", v)
		return
	}
	*dst = b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
