package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shopledger/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "SHOPLEDGER"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyDSN         = "dsn"
	cfgKeyBusyTimeout = "busy_timeout"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"

	defaultLogLevel  = "warn"
	defaultLogFormat = "console"
)

// settings is the merged view of config.yaml and SHOPLEDGER_* variables.
type settings struct {
	Backend     string        `mapstructure:"backend" yaml:"backend"`
	DataDir     string        `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	DSN         string        `mapstructure:"dsn" yaml:"dsn,omitempty"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout,omitempty"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string        `mapstructure:"log_format" yaml:"log_format"`
}

func defaultSettings() settings {
	return settings{
		Backend:   types.BackendSQLite,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

// ledgerConfig builds the backend config with dataDir already resolved.
func (s settings) ledgerConfig(dataDir string) types.Config {
	return types.Config{
		Backend:     s.Backend,
		DataDir:     dataDir,
		DSN:         s.DSN,
		BusyTimeout: s.BusyTimeout,
	}
}

// loadConfig reads config.yaml from configDir with environment overrides.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (settings, error) {
	d := defaultSettings()

	v := viper.New()
	v.SetDefault(cfgKeyBackend, d.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyDSN, "")
	v.SetDefault(cfgKeyBusyTimeout, time.Duration(0))
	v.SetDefault(cfgKeyLogLevel, d.LogLevel)
	v.SetDefault(cfgKeyLogFormat, d.LogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml with s. An existing file is
// left alone and reported as not written.
func writeConfigIfMissing(path string, s settings) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&s)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
