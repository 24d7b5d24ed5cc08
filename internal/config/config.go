package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Registry RegistryConfig `yaml:"registry"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	BindAddr string `yaml:"bindAddr"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN renders the key/value connection string understood by both pgx and lib/pq.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CatalogConfig is the single latest-version record served to customer
// instances. It is fixed at startup and replaced wholesale on redeploy.
type CatalogConfig struct {
	Version      string `yaml:"version"`
	Released     string `yaml:"released"` // YYYY-MM-DD
	ChangelogURL string `yaml:"changelogURL"`
	Critical     bool   `yaml:"critical"`
}

type RegistryConfig struct {
	StaleAfter    string `yaml:"staleAfter"` // e.g. "24h"
	RecentUpdates int    `yaml:"recentUpdates"`
}

// StaleAfterDuration parses StaleAfter, falling back to 24h.
func (c *RegistryConfig) StaleAfterDuration() time.Duration {
	if v, err := time.ParseDuration(c.StaleAfter); err == nil && v > 0 {
		return v
	}
	return 24 * time.Hour
}

type AdminConfig struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()
	return LoadFrom(*configFile)
}

// LoadFrom builds the config from env defaults, then overlays the optional
// YAML file. Separated from Load so tests can bypass flag parsing.
func LoadFrom(path string) (*Config, error) {
	cfg := FromEnv()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// fill reasonable defaults when fields omitted in file
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8001"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.Catalog.Version == "" {
		cfg.Catalog.Version = "1.0.0"
	}
	if cfg.Registry.StaleAfter == "" {
		cfg.Registry.StaleAfter = "24h"
	}
	if cfg.Registry.RecentUpdates <= 0 {
		cfg.Registry.RecentUpdates = 10
	}

	return cfg, nil
}

// FromEnv returns the configuration taken purely from environment variables.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddr: getEnv("SERVER_BIND_ADDR", "0.0.0.0:8001"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "central"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "central"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
		Catalog: CatalogConfig{
			Version:      getEnv("LATEST_VERSION", "1.0.0"),
			Released:     getEnv("LATEST_VERSION_RELEASED", "2026-01-18"),
			ChangelogURL: getEnv("LATEST_VERSION_CHANGELOG_URL", "https://hushlane.app/changelog"),
			Critical:     getEnvBool("LATEST_VERSION_CRITICAL", false),
		},
		Registry: RegistryConfig{
			StaleAfter:    getEnv("REGISTRY_STALE_AFTER", "24h"),
			RecentUpdates: getEnvInt("REGISTRY_RECENT_UPDATES", 10),
		},
		Admin: AdminConfig{
			User: getEnv("MASTER_ADMIN_USERNAME", "admin"),
			Pass: getEnv("MASTER_ADMIN_PASSWORD", "changeme123"),
		},
	}
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
