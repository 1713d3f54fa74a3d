package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/nearlight/internal/config"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

func TestConfigValue(t *testing.T) {
	t.Parallel()

	c := config.Defaults()
	c.Home = "/data"
	c.Network.RateLimit = 2.5
	c.Wallet.CallbackURL = "https://dapp.example.com/return"

	tests := []struct {
		path     string
		expected string
	}{
		{path: "home", expected: "/data"},
		{path: "network.network_id", expected: "mainnet"},
		{path: "network.node_url", expected: "https://rpc.mainnet.fastnear.com/"},
		{path: "network.rate_limit", expected: "2.5"},
		{path: "wallet.base_url", expected: "https://app.mynearwallet.com/"},
		{path: "wallet.callback_url", expected: "https://dapp.example.com/return"},
		{path: "logging.level", expected: "error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, err := configValue(c, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfigValue_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := configValue(config.Defaults(), "network.bogus")
	assert.ErrorIs(t, err, nlerr.ErrUnknownConfigKey)
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	t.Run("network id refreshes endpoints", func(t *testing.T) {
		t.Parallel()

		c := config.Defaults()
		require.NoError(t, setConfigValue(c, "network.network_id", "testnet"))
		assert.Equal(t, "testnet", c.Network.NetworkID)
		assert.Equal(t, "https://rpc.testnet.fastnear.com/", c.Network.NodeURL)
		assert.Equal(t, "https://testnet.mynearwallet.com/", c.Wallet.BaseURL)
	})

	t.Run("unknown network keeps endpoints", func(t *testing.T) {
		t.Parallel()

		c := config.Defaults()
		before := c.Network.NodeURL
		require.NoError(t, setConfigValue(c, "network.network_id", "localnet"))
		assert.Equal(t, "localnet", c.Network.NetworkID)
		assert.Equal(t, before, c.Network.NodeURL)
	})

	t.Run("rate limit validated", func(t *testing.T) {
		t.Parallel()

		c := config.Defaults()
		require.NoError(t, setConfigValue(c, "network.rate_limit", "1.5"))
		assert.InDelta(t, 1.5, c.Network.RateLimit, 0.001)

		assert.ErrorIs(t, setConfigValue(c, "network.rate_limit", "fast"), nlerr.ErrConfigInvalid)
		assert.ErrorIs(t, setConfigValue(c, "network.rate_limit", "-1"), nlerr.ErrConfigInvalid)
	})

	t.Run("logging level lowercased", func(t *testing.T) {
		t.Parallel()

		c := config.Defaults()
		require.NoError(t, setConfigValue(c, "logging.level", "DEBUG"))
		assert.Equal(t, "debug", c.Logging.Level)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, setConfigValue(config.Defaults(), "nope", "x"), nlerr.ErrUnknownConfigKey)
	})
}
