package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Minio      MinioConfig      `yaml:"minio"`
	Validation ValidationConfig `yaml:"validation"`
	Users      []User           `yaml:"users"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig caps requests per client IP over a fixed window.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

// StoreConfig selects and configures the bills store backend.
// Mode "api" talks to the remote store service; mode "local" keeps
// records in an embedded bbolt database with receipt files in minio.
type StoreConfig struct {
	Mode  string           `yaml:"mode"`
	API   APIStoreConfig   `yaml:"api"`
	Local LocalStoreConfig `yaml:"local"`
}

type APIStoreConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LocalStoreConfig struct {
	DBPath string `yaml:"db_path"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// ValidationConfig controls how numeric bill fields are treated on
// submit. The historical behavior coerces empty or unparseable values
// to zero; strict mode rejects them instead.
type ValidationConfig struct {
	StrictNumbers bool `yaml:"strict_numbers"`
}

type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Type     string `yaml:"type"` // Employee or Admin
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimit.Requests == 0 {
		cfg.Server.RateLimit.Requests = 100
	}
	if cfg.Server.RateLimit.WindowSeconds == 0 {
		cfg.Server.RateLimit.WindowSeconds = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Store.Mode == "" {
		cfg.Store.Mode = "local"
	}
	if cfg.Store.API.TimeoutSeconds == 0 {
		cfg.Store.API.TimeoutSeconds = 60
	}
	if cfg.Store.Local.DBPath == "" {
		cfg.Store.Local.DBPath = "billed.db"
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}

	return &cfg, nil
}

// FindUser finds a user by email
func (c *Config) FindUser(email string) *User {
	for i := range c.Users {
		if c.Users[i].Email == email {
			return &c.Users[i]
		}
	}
	return nil
}
