package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv
const (
	EnvDriver         = "UORM_DB_DRIVER"
	EnvHostname       = "UORM_DB_HOST"
	EnvPort           = "UORM_DB_PORT"
	EnvUsername       = "UORM_DB_USER"
	EnvPassword       = "UORM_DB_PASSWORD"
	EnvDataName       = "UORM_DB_NAME"
	EnvPoolSize       = "UORM_DB_POOL_SIZE"
	EnvAcquireTimeout = "UORM_DB_ACQUIRE_TIMEOUT"
	EnvMaxOpen        = "UORM_DB_MAX_OPEN"
)

// FromEnv loads the given .env files, if any, and builds a Config from
// UORM_DB_* variables. Variables already set in the process win over the
// files.
func FromEnv(files ...string) (Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	var cfg Config
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with every UORM_DB_* variable that is set
func ApplyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key, field string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &FieldError{Field: field, Reason: fmt.Sprintf("%q is not an integer", v)}
		}
		*dst = n
		return nil
	}

	setString(EnvDriver, &cfg.Driver)
	setString(EnvHostname, &cfg.Hostname)
	setString(EnvUsername, &cfg.Username)
	setString(EnvPassword, &cfg.Password)
	setString(EnvDataName, &cfg.DataName)

	if err := setInt(EnvPort, "port", &cfg.Port); err != nil {
		return err
	}
	if err := setInt(EnvPoolSize, "poolsize", &cfg.PoolSize); err != nil {
		return err
	}
	if err := setInt(EnvMaxOpen, "max_open", &cfg.MaxOpen); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(EnvAcquireTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &FieldError{Field: "acquire_timeout", Reason: err.Error()}
		}
		cfg.AcquireTimeout = Duration(d)
	}
	return nil
}
