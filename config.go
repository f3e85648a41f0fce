package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// GeminiConfig holds the natural-language search backend configuration.
// With no API key the service falls back to the keyword interpreter.
type GeminiConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// loadConfig reads configuration from a YAML file, then applies environment
// overrides so containerized deployments can skip the file entirely.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			AllowedOrigins: []string{
				"http://localhost:3001",
				"http://127.0.0.1:3001",
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "admin",
			DBName:  "sparkmatchdb",
			SSLMode: "disable",
		},
		JWT:    JWTConfig{Secret: "your_secret_key_please_change_in_production"},
		Gemini: GeminiConfig{TimeoutSeconds: 10},
		Log:    LogConfig{Level: "info"},
	}
}

// DSN returns the PostgreSQL connection string. DATABASE_URL, when set,
// wins over the structured fields.
func (c *DatabaseConfig) DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
