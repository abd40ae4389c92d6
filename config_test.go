package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		bind:      "0.0.0.0",
		port:      3000,
		logFormat: "console",
		logLevel:  "info",
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	cfg := validConfig()
	cfg.port = 0
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.port = 65536
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.tlsCert = "cert.pem"
	assert.Error(t, cfg.validate(), "cert without key must fail")

	cfg = validConfig()
	cfg.tlsKey = "key.pem"
	assert.Error(t, cfg.validate(), "key without cert must fail")

	cfg = validConfig()
	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.NoError(t, cfg.validate())

	cfg = validConfig()
	cfg.logFormat = "xml"
	assert.Error(t, cfg.validate())
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := newLogger("debug", format)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := newLogger("shouting", "console")
	assert.Error(t, err)
}
