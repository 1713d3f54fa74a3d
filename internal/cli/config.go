package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/nearlight/internal/config"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify nearlight configuration settings.`,
}

// configInitCmd writes a default config file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.nearlight/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  nearlight config init
  nearlight config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the effective configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show current configuration",
	Example: `  nearlight config show`,
	Args:    cobra.NoArgs,
	RunE:    runConfigShow,
}

// configGetCmd gets one configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.`,
	Example: `  nearlight config get network.network_id
  nearlight config get network.node_url
  nearlight config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets one configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path and write the
configuration file.`,
	Example: `  nearlight config set network.network_id testnet
  nearlight config set network.node_url https://rpc.testnet.fastnear.com/
  nearlight config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath(cfg.Home)

	if _, err := os.Stat(path); err == nil && !configForce {
		return nlerr.WithSuggestion(
			nlerr.ErrConfigInvalid,
			fmt.Sprintf("configuration already exists at %s; use --force to overwrite", path),
		)
	}

	fresh := config.Defaults()
	fresh.Home = cfg.Home
	if err := fresh.Save(path); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	return writeJSON(os.Stdout, cfg)
}

func runConfigGet(_ *cobra.Command, args []string) error {
	value, err := configValue(cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	if err := setConfigValue(cfg, args[0], args[1]); err != nil {
		return err
	}

	path := config.DefaultConfigPath(cfg.Home)
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

// configValue resolves a dot-notation path into the config tree.
func configValue(c *config.Config, path string) (string, error) {
	switch strings.ToLower(path) {
	case "home":
		return c.Home, nil
	case "network.network_id":
		return c.Network.NetworkID, nil
	case "network.node_url":
		return c.Network.NodeURL, nil
	case "network.rate_limit":
		return strconv.FormatFloat(c.Network.RateLimit, 'f', -1, 64), nil
	case "wallet.base_url":
		return c.Wallet.BaseURL, nil
	case "wallet.callback_url":
		return c.Wallet.CallbackURL, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.file":
		return c.Logging.File, nil
	default:
		return "", unknownKey(path)
	}
}

// setConfigValue assigns a dot-notation path in the config tree.
func setConfigValue(c *config.Config, path, value string) error {
	switch strings.ToLower(path) {
	case "network.network_id":
		c.Network.NetworkID = value
		if n, ok := config.Networks[value]; ok {
			c.Network.NodeURL = n.NodeURL
			c.Wallet.BaseURL = n.WalletURL
		}
	case "network.node_url":
		c.Network.NodeURL = value
	case "network.rate_limit":
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps < 0 {
			return nlerr.WithDetails(nlerr.ErrConfigInvalid, map[string]string{
				"value": value,
			})
		}
		c.Network.RateLimit = rps
	case "wallet.base_url":
		c.Wallet.BaseURL = value
	case "wallet.callback_url":
		c.Wallet.CallbackURL = value
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.file":
		c.Logging.File = value
	default:
		return unknownKey(path)
	}
	return nil
}

func unknownKey(path string) error {
	return nlerr.WithDetails(nlerr.ErrUnknownConfigKey, map[string]string{
		"path": path,
	})
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}
