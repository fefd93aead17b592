// Package config loads and persists the quarry configuration file.
//
// Configuration is resolved in three layers: struct defaults, the YAML
// config file (~/.quarry/config.yaml by default), and QUARRY_* environment
// variables. A .env file next to the config file is loaded first so local
// setups can keep storage credentials out of the shell profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/quarrylabs/quarry-cli/internal/logging"
)

// Config holds all configuration for the quarry CLI.
type Config struct {
	// InstanceDir is the directory holding the server jar, properties
	// file, world data, and the plugins directory.
	InstanceDir string `mapstructure:"instance_dir" default:""`
	// JavaBin is the java executable used to launch the server.
	JavaBin string `mapstructure:"java_bin" default:"java"`
	// MinMemory and MaxMemory are passed to the JVM as -Xms / -Xmx.
	MinMemory string `mapstructure:"min_memory" default:"1G"`
	MaxMemory string `mapstructure:"max_memory" default:"2G"`
	// Port is the default server-port written on first install.
	Port int `mapstructure:"port" default:"25565"`

	// Log configures the structured logger.
	Log logging.Config `mapstructure:"log"`

	// Storage configures the optional S3-compatible backup target.
	Storage StorageConfig `mapstructure:"storage"`
}

// StorageConfig holds credentials for the backup upload target. An empty
// endpoint means uploads are disabled.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint" default:""`
	AccessKey string `mapstructure:"access_key" default:""`
	SecretKey string `mapstructure:"secret_key" default:""`
	Bucket    string `mapstructure:"bucket" default:"quarry-backups"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"true"`
}

// DefaultDir returns the directory holding the config file.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".quarry"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from path. A missing file is not an error;
// defaults and environment variables still apply. An empty path uses
// DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	// Credentials can live in a .env beside the config file.
	_ = godotenv.Overload(filepath.Join(filepath.Dir(path), ".env"))

	v := viper.New()
	bindDefaults(v, Config{}, "")

	v.SetEnvPrefix("QUARRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.InstanceDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.InstanceDir = filepath.Join(dir, "server")
	}

	return &cfg, nil
}

// Save writes the configuration as YAML to path, creating the parent
// directory when needed. An empty path uses DefaultPath.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("instance_dir", cfg.InstanceDir)
	v.Set("java_bin", cfg.JavaBin)
	v.Set("min_memory", cfg.MinMemory)
	v.Set("max_memory", cfg.MaxMemory)
	v.Set("port", cfg.Port)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("storage.endpoint", cfg.Storage.Endpoint)
	v.Set("storage.access_key", cfg.Storage.AccessKey)
	v.Set("storage.secret_key", cfg.Storage.SecretKey)
	v.Set("storage.bucket", cfg.Storage.Bucket)
	v.Set("storage.use_ssl", cfg.Storage.UseSSL)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// bindDefaults walks the struct tags and registers 'default' values in
// viper under their mapstructure keys.
func bindDefaults(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindDefaults(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		if def, ok := field.Tag.Lookup("default"); ok {
			v.SetDefault(key, def)
		}
	}
}
