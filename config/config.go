package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Minio    MinioConfig    `yaml:"minio"`
	Stripe   StripeConfig   `yaml:"stripe"`
	IPLookup IPLookupConfig `yaml:"ip_lookup"`
	Auth     AuthConfig     `yaml:"auth"`
	Trial    TrialConfig    `yaml:"trial"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// BaseURL is the externally visible origin, used to build signing
	// links and Stripe redirect URLs.
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type StripeConfig struct {
	APIURL    string `yaml:"api_url"`
	SecretKey string `yaml:"secret_key"`
	PriceID   string `yaml:"price_id"`
}

type IPLookupConfig struct {
	APIURL string `yaml:"api_url"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type TrialConfig struct {
	Days int `yaml:"days"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

var GlobalConfig *Config

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
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Stripe.APIURL == "" {
		cfg.Stripe.APIURL = "https://api.stripe.com"
	}
	if cfg.IPLookup.APIURL == "" {
		cfg.IPLookup.APIURL = "https://api.ipify.org"
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Trial.Days == 0 {
		cfg.Trial.Days = 14
	}

	GlobalConfig = &cfg
	return &cfg, nil
}
