package config

import (
	"os"
	"path/filepath"
)

// ConfigVersion is the current config schema version.
const ConfigVersion = 1

// DefaultNetworkID is the network used when none is configured.
const DefaultNetworkID = "mainnet"

// Network is a named chain network.
type Network struct {
	NetworkID string
	NodeURL   string
	WalletURL string
}

// Networks are the built-in networks.
//
//nolint:gochecknoglobals // Fixed network table
var Networks = map[string]Network{
	"testnet": {
		NetworkID: "testnet",
		NodeURL:   "https://rpc.testnet.fastnear.com/",
		WalletURL: "https://testnet.mynearwallet.com/",
	},
	"mainnet": {
		NetworkID: "mainnet",
		NodeURL:   "https://rpc.mainnet.fastnear.com/",
		WalletURL: "https://app.mynearwallet.com/",
	},
}

// Defaults returns the default configuration.
func Defaults() *Config {
	home := defaultHome()
	n := Networks[DefaultNetworkID]

	return &Config{
		Version: ConfigVersion,
		Home:    home,
		Network: NetworkConfig{
			NetworkID: n.NetworkID,
			NodeURL:   n.NodeURL,
		},
		Wallet: WalletConfig{
			BaseURL: n.WalletURL,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  filepath.Join(home, "nearlight.log"),
		},
	}
}

// defaultHome returns ~/.nearlight, falling back to a relative directory
// when the home directory cannot be determined.
func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nearlight"
	}
	return filepath.Join(home, ".nearlight")
}
