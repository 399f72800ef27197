package util

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const Name = "statusbridge"
const ConfigFileName = "config.yaml"
const envPrefix = "STATUSBRIDGE_"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host        string
		HttpPort    int    `yaml:"httpPort"`
		SslDomain   string `yaml:"sslDomain"`
		DbPath      string `yaml:"dbPath"`
		KeyPath     string `yaml:"keyPath"`
		OutboxLimit int    `yaml:"outboxLimit"`
		HttpTimeout int    `yaml:"httpTimeout"`
		WithMetrics bool   `yaml:"withMetrics"`
		LogLevel    string `yaml:"logLevel"`
	}
}

func ReadConf() (*AppConfig, error) {
	configPath := ResolveFilePath(ConfigFileName)

	buf, err := os.ReadFile(configPath)
	if err != nil {
		log.Info().Str("path", configPath).Msg("Config file not found, using embedded defaults")
		buf = embeddedConfig

		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := filepath.Join(configDir, ConfigFileName)
			if writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644); writeErr != nil {
				log.Warn().Err(writeErr).Str("path", userConfigPath).Msg("Could not write default config")
			} else {
				log.Info().Str("path", userConfigPath).Msg("Created default config file")
			}
		}
	}

	return ParseConf(buf)
}

// ParseConf decodes a YAML config and applies environment overrides on top of it.
func ParseConf(buf []byte) (*AppConfig, error) {
	c := &AppConfig{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	overrideString(&c.Conf.Host, "HOST")
	overrideInt(&c.Conf.HttpPort, "HTTPPORT")
	overrideString(&c.Conf.SslDomain, "SSLDOMAIN")
	overrideString(&c.Conf.DbPath, "DBPATH")
	overrideString(&c.Conf.KeyPath, "KEYPATH")
	overrideInt(&c.Conf.OutboxLimit, "OUTBOXLIMIT")
	overrideInt(&c.Conf.HttpTimeout, "HTTPTIMEOUT")
	overrideString(&c.Conf.LogLevel, "LOGLEVEL")
	if os.Getenv(envPrefix+"WITH_METRICS") == "true" {
		c.Conf.WithMetrics = true
	}

	if c.Conf.DbPath == "" {
		c.Conf.DbPath = "database.db"
	}
	if c.Conf.KeyPath == "" {
		c.Conf.KeyPath = "instance.pem"
	}
	if c.Conf.OutboxLimit <= 0 {
		c.Conf.OutboxLimit = 20
	}
	if c.Conf.HttpTimeout <= 0 {
		c.Conf.HttpTimeout = 10
	}
	return c, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Err(err).Str("env", envPrefix+key).Msg("Ignoring invalid integer")
		return
	}
	*dst = i
}
