package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source   string `yaml:"source"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Default() Config {
	cfg := Config{
		Source: "./tips",
	}
	home, err := os.UserHomeDir()
	if err == nil {
		cfg.Database.Path = filepath.Join(home, ".tipdex", "tipdex.db")
	} else {
		cfg.Database.Path = "./tipdex.db"
	}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8787
	cfg.Logging.Level = "info"
	return cfg
}

// Load builds the effective configuration: defaults, then the YAML file
// (if any), then environment overrides. A .env file in the working
// directory is honored before the environment is read.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	overrideFromEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Addr(cfg Config) string {
	return net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
}

func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("TIPDEX_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("TIPDEX_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TIPDEX_ADDR"); v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Host = host
				cfg.Server.Port = p
			}
		}
	}
	if v := os.Getenv("TIPDEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func validate(cfg Config) error {
	if cfg.Source == "" {
		return errors.New("source is required")
	}
	if cfg.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("invalid server.port")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", cfg.Logging.Level)
	}
	return nil
}
