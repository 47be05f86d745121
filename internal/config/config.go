package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	MQTT       MQTTConfig
	Alerting   AlertingConfig
	Reporting  ReportingConfig
	Monitoring MonitoringConfig
	API        APIConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// MQTTConfig configures the optional TTN uplink listener
type MQTTConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	AppID   string `mapstructure:"app_id"`
	APIKey  string `mapstructure:"api_key"`
}

type AlertingConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	Window        time.Duration `mapstructure:"window"`
	OpTimeout     time.Duration `mapstructure:"op_timeout"`
}

type ReportingConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	OpTimeout     time.Duration `mapstructure:"op_timeout"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type APIConfig struct {
	IngestKey string `mapstructure:"ingest_key"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("BEEGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.timescaledb.sslmode", "disable")
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.db", 0)

	// SMTP defaults
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from", "alerts@beeguard.local")

	// MQTT defaults (TTN public cluster)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.host", "eu1.cloud.thethings.network")
	viper.SetDefault("mqtt.port", 1883)

	// Scheduler defaults
	viper.SetDefault("alerting.check_interval", "5m")
	viper.SetDefault("alerting.cooldown", "60m")
	viper.SetDefault("alerting.window", "1h")
	viper.SetDefault("alerting.op_timeout", "10s")
	viper.SetDefault("reporting.check_interval", "60m")
	viper.SetDefault("reporting.op_timeout", "30s")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Alerting.Cooldown <= 0 {
		return fmt.Errorf("alert cooldown must be positive")
	}
	if config.MQTT.Enabled && config.MQTT.AppID == "" {
		return fmt.Errorf("mqtt app_id is required when mqtt is enabled")
	}
	return nil
}
