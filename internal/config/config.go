// Package config loads the storage layer properties from a config file,
// .env files and the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/javaito/PostgresStorageLayer/runtime/pool"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name, without extension.
	FileName = ".pgstorage"
	// EnvPrefix prefixes every environment override
	// (storage.pool.host is read from PGSTORAGE_STORAGE_POOL_HOST).
	EnvPrefix = "PGSTORAGE"
)

// Config holds the storage layer configuration
type Config struct {
	Pool pool.Config
	// Reserved overrides keyword spellings by reserved word name.
	Reserved           map[string]string
	LayerTag           string
	StatementTag       string
	Debug              bool
	ValidateStatements bool
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := pool.DefaultConfig()
	v.SetDefault("storage.pool.driver", d.Driver)
	v.SetDefault("storage.pool.dsn", "")
	v.SetDefault("storage.pool.host", d.Host)
	v.SetDefault("storage.pool.port", d.Port)
	v.SetDefault("storage.pool.database", d.Database)
	v.SetDefault("storage.pool.user", d.User)
	v.SetDefault("storage.pool.password", d.Password)
	v.SetDefault("storage.pool.ssl_mode", d.SSLMode)
	v.SetDefault("storage.pool.max_connections", d.MaxConnections)
	v.SetDefault("storage.pool.initial_connections", d.InitialConnections)
	v.SetDefault("storage.pool.idle_timeout", d.IdleTimeout)
	v.SetDefault("storage.pool.max_lifetime", d.MaxLifetime)
	v.SetDefault("storage.pool.health_check_interval", d.HealthCheckInterval)
	v.SetDefault("storage.log.layer_tag", "Postgres")
	v.SetDefault("storage.log.statement_tag", "pgDB")
	v.SetDefault("storage.log.debug", false)
	v.SetDefault("storage.validate_statements", false)
}

// Load reads the configuration from .pgstorage.yaml (working directory,
// home directory or ~/.config/pgstorage), .env and .env.local in the working
// directory and PGSTORAGE_* environment variables, in increasing priority.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Load .env file if it exists
	if err := loadEnv(filepath.Join(wd, ".env"), false); err != nil {
		return nil, err
	}
	// Load .env.local if it exists (higher priority)
	if err := loadEnv(filepath.Join(wd, ".env.local"), true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(wd)
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "pgstorage"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return FromViper(v), nil
}

// FromViper builds a Config from the values visible to v.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Pool: pool.Config{
			Driver:              v.GetString("storage.pool.driver"),
			DSN:                 v.GetString("storage.pool.dsn"),
			Host:                v.GetString("storage.pool.host"),
			Port:                v.GetInt("storage.pool.port"),
			Database:            v.GetString("storage.pool.database"),
			User:                v.GetString("storage.pool.user"),
			Password:            v.GetString("storage.pool.password"),
			SSLMode:             v.GetString("storage.pool.ssl_mode"),
			MaxConnections:      v.GetInt("storage.pool.max_connections"),
			InitialConnections:  v.GetInt("storage.pool.initial_connections"),
			IdleTimeout:         duration(v, "storage.pool.idle_timeout"),
			MaxLifetime:         duration(v, "storage.pool.max_lifetime"),
			HealthCheckInterval: duration(v, "storage.pool.health_check_interval"),
		},
		Reserved:           v.GetStringMapString("storage.reserved"),
		LayerTag:           v.GetString("storage.log.layer_tag"),
		StatementTag:       v.GetString("storage.log.statement_tag"),
		Debug:              v.GetBool("storage.log.debug"),
		ValidateStatements: v.GetBool("storage.validate_statements"),
	}
	if cfg.Pool.DSN == "" {
		cfg.Pool.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg
}

// duration reads a duration; plain numbers are milliseconds.
func duration(v *viper.Viper, key string) time.Duration {
	switch raw := v.Get(key).(type) {
	case int:
		return time.Duration(raw) * time.Millisecond
	case int64:
		return time.Duration(raw) * time.Millisecond
	case float64:
		return time.Duration(raw * float64(time.Millisecond))
	case string:
		if ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return v.GetDuration(key)
}

// loadEnv applies the variables of an env file found on AppFs. Existing
// variables are kept unless override is set.
func loadEnv(path string, override bool) error {
	if _, err := AppFs.Stat(path); err != nil {
		return nil
	}
	f, err := AppFs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return err
	}
	for k, val := range vars {
		if _, exists := os.LookupEnv(k); exists && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}
