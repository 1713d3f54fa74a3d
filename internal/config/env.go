package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome      = "NEARLIGHT_HOME"
	EnvNetwork   = "NEARLIGHT_NETWORK"
	EnvNodeURL   = "NEARLIGHT_NODE_URL"
	EnvWalletURL = "NEARLIGHT_WALLET_URL"
	EnvLogLevel  = "NEARLIGHT_LOG_LEVEL"
	EnvRateLimit = "NEARLIGHT_RATE_LIMIT"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		v = strings.ToLower(v)
		cfg.Network.NetworkID = v
		if n, ok := Networks[v]; ok {
			cfg.Network.NodeURL = n.NodeURL
			if cfg.Wallet.BaseURL == "" {
				cfg.Wallet.BaseURL = n.WalletURL
			}
		}
	}

	if v := os.Getenv(EnvNodeURL); v != "" {
		cfg.Network.NodeURL = v
	}

	if v := os.Getenv(EnvWalletURL); v != "" {
		cfg.Wallet.BaseURL = v
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.Network.RateLimit = rps
		}
	}
}
