package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "gideon"

// Storage backends
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the full server configuration
type Config struct {
	Server        ServerConfig  `yaml:"server"`
	Storage       StorageConfig `yaml:"storage"`
	Roster        RosterConfig  `yaml:"roster"`
	Lookup        LookupConfig  `yaml:"lookup"`
	Auth          AuthConfig    `yaml:"auth"`
	Log           LogConfig     `yaml:"log"`
	CommandPrefix string        `yaml:"commandPrefix" split_words:"true"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// WriteTimeout bounds the slowest request; update walks every player
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
}

type StorageConfig struct {
	Type string `yaml:"type"`
	// Path is the JSON document for the file backend
	Path       string `yaml:"path"`
	BackupDir  string `yaml:"backupDir" split_words:"true"`
	RedisURL   string `yaml:"redisURL" envconfig:"redis_url"`
	SQLitePath string `yaml:"sqlitePath" envconfig:"sqlite_path"`
}

type RosterConfig struct {
	SoftLimit  int    `yaml:"softLimit" split_words:"true"`
	HardLimit  int    `yaml:"hardLimit" split_words:"true"`
	Footer     string `yaml:"footer"`
	Disclaimer string `yaml:"disclaimer"`
	// Supporters are contact ids rendered with the supporter glyph
	Supporters []int64 `yaml:"supporters"`
}

type LookupConfig struct {
	BaseURL    string        `yaml:"baseURL" envconfig:"base_url"`
	SessionURL string        `yaml:"sessionURL" envconfig:"session_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	// APITokenHash is the bcrypt hash of the operator API token
	APITokenHash    string        `yaml:"apiTokenHash" envconfig:"api_token_hash"`
	SessionDuration time.Duration `yaml:"sessionDuration" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			WriteTimeout: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Type:      StorageFile,
			Path:      "data/database.json",
			BackupDir: "data/backups",
		},
		Roster: RosterConfig{
			SoftLimit: 1900,
			HardLimit: 2000,
		},
		Lookup: LookupConfig{
			BaseURL:    "https://api.mojang.com",
			SessionURL: "https://sessionserver.mojang.com/session/minecraft/profile",
			Timeout:    10 * time.Second,
		},
		Auth: AuthConfig{
			SessionDuration: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		CommandPrefix: "gd:",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// a .env file in the working directory and GIDEON_* environment variables,
// in that order of increasing precedence. An empty configFile falls back
// to $GIDEON_CONFIG.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv("GIDEON_CONFIG")
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first inconsistency in the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("invalid server write timeout %s", c.Server.WriteTimeout)
	}

	switch c.Storage.Type {
	case StorageFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path required when storage type is file")
		}
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redisURL required when storage type is redis")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlitePath required when storage type is sqlite")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.Roster.SoftLimit <= 0 || c.Roster.HardLimit <= 0 {
		return errors.New("roster limits must be positive")
	}
	if c.Roster.SoftLimit >= c.Roster.HardLimit {
		return fmt.Errorf("roster soft limit %d must be below hard limit %d",
			c.Roster.SoftLimit, c.Roster.HardLimit)
	}

	if c.Lookup.Timeout < 0 {
		return errors.New("lookup timeout must not be negative")
	}
	if strings.TrimSpace(c.CommandPrefix) == "" {
		return errors.New("command prefix must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SlogLevel parses the configured log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
