package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingStoreURI is returned when no store connection string is configured.
var ErrMissingStoreURI = errors.New("config: MONGODB_URI is required")

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	StoreURI       string        `mapstructure:"MONGODB_URI"`
	DBName         string        `mapstructure:"MONGODB_DATABASE"`
	Port           string        `mapstructure:"PORT"`
	Environment    string        `mapstructure:"APP_ENV"`
	ConnectTimeout time.Duration `mapstructure:"CONNECT_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`

	GeocodeURL    string `mapstructure:"GEOCODE_URL"`
	IPEchoURL     string `mapstructure:"IP_ECHO_URL"`
	ProductionURL string `mapstructure:"API_URL_PRODUCTION"`
	DevelopURL    string `mapstructure:"API_URL_DEVELOPMENT"`
}

var keys = []string{
	"MONGODB_URI",
	"MONGODB_DATABASE",
	"PORT",
	"APP_ENV",
	"CONNECT_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"GEOCODE_URL",
	"IP_ECHO_URL",
	"API_URL_PRODUCTION",
	"API_URL_DEVELOPMENT",
}

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("MONGODB_DATABASE", "checkin")
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CONNECT_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("IP_ECHO_URL", "https://api.ipify.org")
	v.SetDefault("API_URL_PRODUCTION", "https://checkin.example.com/api/location")
	v.SetDefault("API_URL_DEVELOPMENT", "http://localhost:5000/api/location")

	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about when unmarshalling.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads configuration from app.env in path (optional) and the environment.
// It fails when the store connection string is missing.
func LoadConfig(path string) (Config, error) {
	cfg, err := LoadClientConfig(path)
	if err != nil {
		return cfg, err
	}
	if cfg.StoreURI == "" {
		return cfg, ErrMissingStoreURI
	}
	return cfg, nil
}

// LoadClientConfig reads the same sources as LoadConfig without requiring a store.
func LoadClientConfig(path string) (Config, error) {
	var cfg Config
	v, err := newViper(path)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to decode: %w", err)
	}
	return cfg, nil
}

// ServerAddress is the listen address derived from Port.
func (c Config) ServerAddress() string {
	return ":" + c.Port
}

// SubmissionURL selects the persistence endpoint for the current environment.
func (c Config) SubmissionURL() string {
	if c.Environment == "production" {
		return c.ProductionURL
	}
	return c.DevelopURL
}
