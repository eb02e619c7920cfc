package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	v := viper.New()
	v.SetConfigFile(path)
	return v
}

func TestLoadFrom(t *testing.T) {
	t.Run("checkout section", func(t *testing.T) {
		v := writeConfig(t, `
checkout:
  signing_secret: s3cret
  max_payment_methods: 2
  token_ttl: 1h
  state_store: memory
  enabled_payment_methods:
    - method: cash
      permission: staff_only
    - method: credit-card
      method_kwargs:
        get_token_url: https://pay.example.com/token
  fraud_checks:
    - rule: address_velocity
      kwargs:
        period: 2h
        threshold: 3
`)
		cfg, err := LoadFrom(v)
		require.NoError(t, err)

		c := cfg.Checkout
		assert.Equal(t, "s3cret", c.SigningSecret)
		assert.Equal(t, 2, c.MaxPaymentMethods)
		assert.Equal(t, time.Hour, c.TokenTTL)
		assert.Equal(t, "memory", c.StateStore)
		assert.Equal(t, 24*time.Hour, c.StateTTL)
		assert.Equal(t, 24*time.Hour, c.DataCacheTTL)
		assert.True(t, c.ValidateCachedData)

		require.Len(t, c.EnabledPaymentMethods, 2)
		assert.Equal(t, "cash", c.EnabledPaymentMethods[0].Method)
		assert.Equal(t, "staff_only", c.EnabledPaymentMethods[0].Permission)
		assert.Equal(t, "https://pay.example.com/token", c.EnabledPaymentMethods[1].MethodKwargs["get_token_url"])

		require.Len(t, c.FraudChecks, 1)
		assert.Equal(t, "address_velocity", c.FraudChecks[0].Rule)
		assert.Equal(t, "2h", c.FraudChecks[0].Kwargs["period"])
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadFrom(writeConfig(t, "checkout:\n  signing_secret: x\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, "checkout", cfg.Database.Database)
		assert.Equal(t, "redis", cfg.Checkout.StateStore)
		assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenExpiry)
		require.Len(t, cfg.Checkout.EnabledPaymentMethods, 2)
		assert.Equal(t, "cash", cfg.Checkout.EnabledPaymentMethods[0].Method)
	})

	t.Run("secrets from environment", func(t *testing.T) {
		t.Setenv("CHECKOUT_SIGNING_SECRET", "from-env")
		t.Setenv("CHECKOUT_DB_PASSWORD", "pw")
		cfg, err := LoadFrom(writeConfig(t, "checkout:\n  signing_secret: from-file\n"))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Checkout.SigningSecret)
		assert.Equal(t, "pw", cfg.Database.Password)
	})

	t.Run("missing signing secret", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, "log:\n  level: debug\n"))
		assert.Error(t, err)
	})

	t.Run("unknown state store", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, "checkout:\n  signing_secret: x\n  state_store: disk\n"))
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := &DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "checkout", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=checkout sslmode=disable", c.DSN())
}
