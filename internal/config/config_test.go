package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:       "8480",
			JWTSecret:  "secure-secret-at-least-32-chars-long",
			DBPassword: "secure-password",
			DBSSLMode:  "require",
			Env:        "development",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"default jwt secret allowed in development", func(c *Config) {
			c.JWTSecret = "your-secret-key-change-in-production"
		}, false},
		{"default jwt secret rejected in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"short jwt secret rejected in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"weak db password rejected in production", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"disabled ssl rejected in production", func(c *Config) {
			c.Env = "prod"
			c.DBSSLMode = "disable"
		}, true},
		{"disabled ssl allowed in development", func(c *Config) {
			c.DBSSLMode = "disable"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
