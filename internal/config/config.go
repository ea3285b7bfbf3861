package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"API_PORT"`
	BasePath      string        `mapstructure:"BASE_PATH"`
	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	MongoTimeout  time.Duration `mapstructure:"MONGO_TIMEOUT"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	SMTPHost      string        `mapstructure:"SMTP_HOST"`
	SMTPPort      int           `mapstructure:"SMTP_PORT"`
	EmailUser     string        `mapstructure:"EMAIL_USER"`
	EmailPass     string        `mapstructure:"EMAIL_PASS"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	LogFormat     string        `mapstructure:"LOG_FORMAT"`
	GinMode       string        `mapstructure:"GIN_MODE"`

	dotenvMissing bool
}

var keys = []string{
	"API_PORT", "BASE_PATH", "MONGO_URI", "MONGO_DATABASE", "MONGO_TIMEOUT",
	"JWT_SECRET", "TOKEN_TTL", "CORS_ORIGINS", "REDIS_ADDR", "REDIS_PASSWORD",
	"SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
	"LOG_LEVEL", "LOG_FORMAT", "GIN_MODE",
}

// Load reads .env (if present) into the environment and then the environment
// into a Config. A missing .env file is not an error.
func Load() (*Config, error) {
	dotenvErr := godotenv.Load()

	v := viper.New()
	v.SetDefault("API_PORT", "8080")
	v.SetDefault("BASE_PATH", "/api/physioweb")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "physiocare")
	v.SetDefault("MONGO_TIMEOUT", "10s")
	v.SetDefault("TOKEN_TTL", "2h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("GIN_MODE", "release")

	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Comma separated in the environment.
	if origins := v.GetString("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if dotenvErr != nil {
		cfg.dotenvMissing = true
	}
	return cfg, nil
}

// Validate checks what the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.MongoDatabase == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// DotenvMissing reports whether no .env file was found at load time.
func (c *Config) DotenvMissing() bool {
	return c.dotenvMissing
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
