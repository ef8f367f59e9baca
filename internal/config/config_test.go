package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseConfig() *Config {
	return &Config{
		AuthMode:   ModeLocal,
		JWTSecret:  "test-secret",
		Port:       "3000",
		DBPassword: "password",
		Env:        "test",
	}
}

func TestConfig_Validate_LocalMode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, baseConfig().Validate())
	})

	t.Run("missing JWT secret", func(t *testing.T) {
		c := baseConfig()
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})
}

func TestConfig_Validate_FederatedMode(t *testing.T) {
	federated := func() *Config {
		c := baseConfig()
		c.AuthMode = ModeFederated
		c.JWTSecret = ""
		c.IDPURL = "https://idp.example.com"
		c.StorageEndpoint = "storage.example.com"
		c.StorageAccessKey = "access"
		c.StorageSecretKey = "secret"
		c.StorageBucket = "avatars"
		return c
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, federated().Validate())
	})

	t.Run("missing IDP URL", func(t *testing.T) {
		c := federated()
		c.IDPURL = ""
		assert.Error(t, c.Validate())
	})

	t.Run("missing storage credentials", func(t *testing.T) {
		c := federated()
		c.StorageSecretKey = ""
		assert.Error(t, c.Validate())
	})

	t.Run("no symmetric secret required", func(t *testing.T) {
		c := federated()
		c.JWTSecret = ""
		assert.NoError(t, c.Validate())
	})
}

func TestConfig_Validate_UnknownMode(t *testing.T) {
	c := baseConfig()
	c.AuthMode = "hybrid"
	assert.Error(t, c.Validate())
}

func TestConfig_Validate_Production(t *testing.T) {
	c := baseConfig()
	c.Env = "production"
	c.JWTSecret = "short"
	c.DBPassword = "strong-database-password"
	assert.Error(t, c.Validate(), "short JWT secret must be rejected in production")

	c.JWTSecret = "secure-secret-at-least-32-chars-long"
	c.DBPassword = "password"
	assert.Error(t, c.Validate(), "default DB password must be rejected in production")

	c.DBPassword = "strong-database-password"
	assert.NoError(t, c.Validate())
}
