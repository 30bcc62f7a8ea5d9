package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	CORS     CORSConfig
	Token    TokenConfig
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host                   string
	Port                   int
	Username               string
	Password               string
	Name                   string
	SSLMode                string
	MaxIdleConns           int
	MaxOpenConns           int
	MaxConnLifetimeSeconds int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// TokenConfig holds the verification settings for externally issued bearer
// tokens. Token issuance and session management live outside this service.
type TokenConfig struct {
	SigningSecret string
}

const (
	envDBPassword  = "DB_PASSWORD"
	envTokenSecret = "TOKEN_SIGNING_SECRET"
)

// Load reads configuration from a TOML file (viper) and secrets from the
// environment (.env supported via godotenv).
func Load() (*Config, error) {
	_ = godotenv.Load()

	configName := "config"
	if name := os.Getenv("CONFIG_NAME"); name != "" {
		configName = name
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxidleconns", 10)
	viper.SetDefault("database.maxopenconns", 100)
	viper.SetDefault("database.maxconnlifetimeseconds", 3600)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("cors.allowedorigins", []string{"http://localhost:3000", "http://localhost:5173"})
	viper.SetDefault("cors.allowedmethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowedheaders", []string{"Content-Type", "Authorization"})
	viper.SetDefault("cors.allowcredentials", true)
	viper.SetDefault("cors.maxage", time.Hour)

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets never live in the config file.
	cfg.Database.Password = os.Getenv(envDBPassword)
	cfg.Token.SigningSecret = os.Getenv(envTokenSecret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"db_host": cfg.Database.Host,
		"db_port": cfg.Database.Port,
		"db_name": cfg.Database.Name,
		"port":    cfg.Server.Port,
	}).Info("config parsed")

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Username == "" {
		return fmt.Errorf("database.username is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("%s is required", envDBPassword)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Token.SigningSecret == "" {
		return fmt.Errorf("%s is required", envTokenSecret)
	}
	return nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	// The URL format is more robust for special characters in passwords.
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	query := dsn.Query()
	query.Add("sslmode", c.SSLMode)
	dsn.RawQuery = query.Encode()
	return dsn.String()
}
