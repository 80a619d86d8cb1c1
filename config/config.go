// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "NOTAS"

const (
	KeyHost        = "host"
	KeyPort        = "port"
	KeyDatabase    = "database"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyCORSOrigins = "cors-origins"
)

type Config struct {
	Host        string
	Port        int
	Database    string
	LogLevel    string
	LogFormat   string
	CORSOrigins string
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, 5001)
	v.SetDefault(KeyDatabase, "nota.sqlite3")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyCORSOrigins, "*")
}

// Load resolves the configuration. Later sources win: defaults, the YAML
// config file, NOTAS_* environment variables (a missing envFile is
// ignored), then any flags already bound to v.
//
// With configFile empty, ./config.yaml is read when present.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Host:        v.GetString(KeyHost),
		Port:        v.GetInt(KeyPort),
		Database:    v.GetString(KeyDatabase),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
		CORSOrigins: v.GetString(KeyCORSOrigins),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Database == "" {
		return errors.New("database must not be empty")
	}
	return nil
}
