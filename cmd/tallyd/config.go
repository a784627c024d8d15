package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tinytelemetry/tally/internal/model"
)

const (
	defaultBindHost      = model.DefaultBindHost
	defaultAPIPort       = model.DefaultAPIPort
	defaultTCPPort       = model.DefaultTCPPort
	defaultSessionTTL    = model.DefaultSessionTTL
	defaultSweepInterval = model.DefaultSweepInterval
	defaultMaxSessions   = model.DefaultMaxSessions
	defaultMaxLineSize   = model.DefaultMaxLineSize
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the service entrypoint.
type appConfig struct {
	APIEnabled    bool          `mapstructure:"api-enabled"`
	APIPort       int           `mapstructure:"api-port"`
	APIAddr       string        `mapstructure:"api-addr"`
	TCPEnabled    bool          `mapstructure:"tcp-enabled"`
	TCPPort       int           `mapstructure:"tcp-port"`
	TCPAddr       string        `mapstructure:"tcp-addr"`
	MaxLineSize   int           `mapstructure:"max-line-size"`
	SessionTTL    time.Duration `mapstructure:"session-ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
	MaxSessions   int           `mapstructure:"max-sessions"`
	LogFile       string        `mapstructure:"log-file"`
	ConfigPath    string        `mapstructure:"-"` // not from config file
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("tcp-enabled", true)
	v.SetDefault("tcp-port", defaultTCPPort)
	v.SetDefault("max-line-size", defaultMaxLineSize)
	v.SetDefault("session-ttl", defaultSessionTTL)
	v.SetDefault("sweep-interval", defaultSweepInterval)
	v.SetDefault("max-sessions", defaultMaxSessions)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "tally", "tally.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "tally", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	if cfg.TCPPort <= 0 || cfg.TCPPort > 65535 {
		return cfg, fmt.Errorf("invalid tcp-port: %d", cfg.TCPPort)
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if cfg.MaxSessions < 0 {
		return cfg, fmt.Errorf("invalid max-sessions: %d", cfg.MaxSessions)
	}

	// Expand ~ in log-file
	if strings.HasPrefix(cfg.LogFile, "~/") {
		cfg.LogFile = filepath.Join(home, cfg.LogFile[2:])
	}

	if cfg.TCPAddr == "" {
		cfg.TCPAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.TCPPort))
	}
	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
