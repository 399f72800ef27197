package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "statusbridge", Name)
	assert.Equal(t, "config.yaml", ConfigFileName)
}

func TestParseConfWithYaml(t *testing.T) {
	yamlContent := `
conf:
  host: 127.0.0.1
  httpPort: 9999
  sslDomain: example.com
  dbPath: /tmp/test.db
  outboxLimit: 5
  withMetrics: true
`
	config, err := ParseConf([]byte(yamlContent))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Conf.Host)
	assert.Equal(t, 9999, config.Conf.HttpPort)
	assert.Equal(t, "example.com", config.Conf.SslDomain)
	assert.Equal(t, "/tmp/test.db", config.Conf.DbPath)
	assert.Equal(t, 5, config.Conf.OutboxLimit)
	assert.True(t, config.Conf.WithMetrics)
}

func TestParseConfDefaults(t *testing.T) {
	config, err := ParseConf([]byte("conf:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, "database.db", config.Conf.DbPath)
	assert.Equal(t, "instance.pem", config.Conf.KeyPath)
	assert.Equal(t, 20, config.Conf.OutboxLimit)
	assert.Equal(t, 10, config.Conf.HttpTimeout)
}

func TestParseConfWithEnvOverrides(t *testing.T) {
	t.Setenv("STATUSBRIDGE_HOST", "192.168.1.1")
	t.Setenv("STATUSBRIDGE_HTTPPORT", "8080")
	t.Setenv("STATUSBRIDGE_SSLDOMAIN", "test.example.com")
	t.Setenv("STATUSBRIDGE_OUTBOXLIMIT", "7")
	t.Setenv("STATUSBRIDGE_WITH_METRICS", "true")

	config, err := ParseConf([]byte("conf:\n  host: 127.0.0.1\n  httpPort: 9999\n"))
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.1", config.Conf.Host)
	assert.Equal(t, 8080, config.Conf.HttpPort)
	assert.Equal(t, "test.example.com", config.Conf.SslDomain)
	assert.Equal(t, 7, config.Conf.OutboxLimit)
	assert.True(t, config.Conf.WithMetrics)
}

func TestParseConfInvalidIntEnvKeepsFileValue(t *testing.T) {
	t.Setenv("STATUSBRIDGE_HTTPPORT", "not-a-number")

	config, err := ParseConf([]byte("conf:\n  httpPort: 9999\n"))
	require.NoError(t, err)
	assert.Equal(t, 9999, config.Conf.HttpPort)
}

func TestParseConfInvalidYaml(t *testing.T) {
	_, err := ParseConf([]byte("conf: [unclosed"))
	assert.Error(t, err)
}

func TestEmbeddedDefaultConfigParses(t *testing.T) {
	config, err := ParseConf(embeddedConfig)
	require.NoError(t, err)
	assert.Equal(t, "example.com", config.Conf.SslDomain)
}
