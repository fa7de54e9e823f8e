/*
Package config implements TOML config file handling for kantan.

Normally it will be used by passing a config file name to the Load function to
obtain a Config struct. Values from the environment, or from a .env file in the
working directory, override the file.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvDatabase     = "KANTAN_DATABASE"
	EnvMaxPageSize  = "KANTAN_MAX_PAGE_SIZE"
	EnvAdminUser    = "ADMIN_USERNAME"
	EnvAdminPass    = "ADMIN_PASSWORD"
	defaultDatabase = "./kantan.db"
)

// Config represents the parsed configuration.
type Config struct {
	DB    DatabaseConfig `toml:"database"`
	Query QueryConfig    `toml:"query"`
	Admin AdminConfig    `toml:"admin"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path to the database file. Created on first open.
	File string `toml:"file"`
}

// QueryConfig bounds the paginated list queries.
type QueryConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// AdminConfig seeds the first admin account on init.
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// HasAdmin reports whether bootstrap credentials are configured.
func (a AdminConfig) HasAdmin() bool {
	return a.Username != "" && a.Password != ""
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	if len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if c.Query.DefaultLimit <= 0 {
		return errors.New("config: query.default_limit must be positive")
	}
	if c.Query.MaxLimit <= 0 {
		return errors.New("config: query.max_limit must be positive")
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		return fmt.Errorf("config: query.default_limit (%d) exceeds query.max_limit (%d)", c.Query.DefaultLimit, c.Query.MaxLimit)
	}
	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return errors.New("config: admin.username and admin.password must be set together")
	}
	return nil
}

// Default returns a Config with default values.
func Default() Config {
	return Config{
		DB: DatabaseConfig{
			File: filepath.FromSlash(defaultDatabase),
		},
		Query: QueryConfig{
			DefaultLimit: 100,
			MaxLimit:     100,
		},
	}
}

// Load reads config from a TOML file, applies environment overrides and
// checks validity. An empty file name skips the file and starts from
// Default. Unknown keys in the file are an error.
func Load(file string) (Config, error) {
	conf := Default()

	if file != "" {
		md, err := toml.DecodeFile(file, &conf)
		if err != nil {
			return conf, fmt.Errorf("config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return conf, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
		}
	}

	// A missing .env file is normal
	_ = godotenv.Load()

	if err := applyEnv(&conf); err != nil {
		return conf, err
	}

	if err := conf.valid(); err != nil {
		return conf, err
	}
	return conf, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.DB.File = v
	}
	if v := os.Getenv(EnvMaxPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMaxPageSize, err)
		}
		c.Query.MaxLimit = n
		if c.Query.DefaultLimit > n {
			c.Query.DefaultLimit = n
		}
	}
	if v := os.Getenv(EnvAdminUser); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv(EnvAdminPass); v != "" {
		c.Admin.Password = v
	}
	return nil
}
