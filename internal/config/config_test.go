package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Equal(t, "mainnet", cfg.Network.NetworkID)
	assert.Equal(t, "https://rpc.mainnet.fastnear.com/", cfg.Network.NodeURL)
	assert.Equal(t, "https://app.mynearwallet.com/", cfg.Wallet.BaseURL)
	assert.NotEmpty(t, cfg.Home)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, nlerr.ErrConfigNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: [not a map"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, nlerr.ErrConfigInvalid)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	path := DefaultConfigPath(home)

	cfg := Defaults()
	cfg.Home = home
	cfg.Network.NetworkID = "testnet"
	cfg.Network.NodeURL = "" // filled from the network table on load
	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", loaded.Network.NetworkID)
	assert.Equal(t, "https://rpc.testnet.fastnear.com/", loaded.Network.NodeURL,
		"named network fills the node URL")
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NotNil(t, cfg)
	assert.Equal(t, "mainnet", cfg.Network.NetworkID)
}

func TestStorePath_PerNetwork(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Home = "/data"
	cfg.Network.NetworkID = "testnet"
	assert.Equal(t, filepath.Join("/data", "testnet.store.json"), cfg.StorePath())
}

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvNetwork, "TESTNET")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvRateLimit, "2.5")

	cfg := Defaults()
	cfg.Wallet.BaseURL = ""
	ApplyEnvironment(cfg)

	assert.Equal(t, "testnet", cfg.Network.NetworkID)
	assert.Equal(t, "https://rpc.testnet.fastnear.com/", cfg.Network.NodeURL)
	assert.Equal(t, "https://testnet.mynearwallet.com/", cfg.Wallet.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.InDelta(t, 2.5, cfg.Network.RateLimit, 0.001)
}

func TestApplyEnvironment_NodeURLOverridesNetwork(t *testing.T) {
	t.Setenv(EnvNetwork, "testnet")
	t.Setenv(EnvNodeURL, "http://localhost:3030")

	cfg := Defaults()
	ApplyEnvironment(cfg)
	assert.Equal(t, "http://localhost:3030", cfg.Network.NodeURL)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelOff, ParseLogLevel("off"))
	assert.Equal(t, LogLevelError, ParseLogLevel("unknown"))
}

func TestLogger_WritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "client.log")
	logger, err := NewLogger(LogLevelDebug, path)
	require.NoError(t, err)

	logger.Debug("debug %s", "detail")
	logger.Error("error %s", "detail")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug detail")
	assert.Contains(t, string(data), "error detail")
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "client.log")
	logger, err := NewLogger(LogLevelError, path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Error("shown")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNullLogger(t *testing.T) {
	t.Parallel()

	logger := NullLogger()
	logger.Debug("nothing")
	logger.Error("nothing")
	assert.NoError(t, logger.Close())
}
