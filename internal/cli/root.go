// Package cli implements the nearlight command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/nearlight/internal/client"
	"github.com/mrz1836/nearlight/internal/config"
	"github.com/mrz1836/nearlight/internal/events"
	"github.com/mrz1836/nearlight/internal/rpc"
	"github.com/mrz1836/nearlight/internal/session"
	"github.com/mrz1836/nearlight/internal/store"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

var (
	// Global flags
	homeDir   string
	networkID string
	nodeURL   string
	verbose   bool

	// Global state initialized in PersistentPreRunE
	cfg    *config.Config
	logger *config.Logger
	app    *client.Client
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nearlight",
	Short: "A lightweight NEAR client",
	Long: `Nearlight is a minimal NEAR protocol client: query the chain, hold a
local access key, and build, sign, and send transactions.

Transactions the held key cannot sign are handed off to a web wallet
through a redirect flow.

Example:
  nearlight keys generate
  nearlight query account alice.near
  nearlight send transfer bob.near "1.5 NEAR"
  nearlight send call counter.near increment '{"by": 2}'`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return nlerr.ExitCode(err)
}

// printError writes a one-line error, with the suggestion when one is
// attached.
func printError(w *os.File, err error) {
	var ce *nlerr.ClientError
	if nlerr.As(err, &ce) && ce.Suggestion != "" {
		_, _ = fmt.Fprintf(w, "Error: %v\nHint: %s\n", err, ce.Suggestion)
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

// initGlobals loads configuration, opens the persisted store, and wires the
// client.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}

	var path string
	if home != "" {
		path = config.DefaultConfigPath(home)
	} else {
		d := config.Defaults()
		home = d.Home
		path = config.DefaultConfigPath(home)
	}

	cfg = config.LoadOrDefault(path)
	cfg.Home = home

	// Command-line flags win over file and environment.
	if networkID != "" {
		cfg.Network.NetworkID = networkID
		cfg.Network.NodeURL = ""
		if n, ok := config.Networks[networkID]; ok {
			cfg.Network.NodeURL = n.NodeURL
			cfg.Wallet.BaseURL = n.WalletURL
		}
	}
	if nodeURL != "" {
		cfg.Network.NodeURL = nodeURL
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if cfg.Network.NodeURL == "" {
		return nlerr.WithDetails(nlerr.ErrConfigInvalid, map[string]string{
			"reason": "no node URL for network " + cfg.Network.NetworkID,
		})
	}

	var err error
	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	st, err := store.OpenFileStore(cfg.StorePath())
	if err != nil {
		// A sidelined corrupt store still yields a usable empty store.
		logger.Error("opening store: %v", err)
	}

	bus := events.NewBus(logger)
	mgr := session.NewManager(st, bus, logger)

	limiter := rpc.DefaultRateLimiter()
	if cfg.Network.RateLimit > 0 {
		limiter = rpc.NewRateLimiter(cfg.Network.RateLimit, int(cfg.Network.RateLimit*2))
	}

	var bridge client.Bridge
	if cfg.Wallet.BaseURL != "" {
		bridge = client.NewWebWallet(cfg.Wallet.BaseURL)
	}

	app = client.New(&client.Config{
		NetworkID:   cfg.Network.NetworkID,
		CallbackURL: cfg.Wallet.CallbackURL,
		RPC:         rpc.NewClient(cfg.Network.NodeURL, limiter),
		Session:     mgr,
		Bus:         bus,
		Bridge:      bridge,
		Navigator:   printNavigator{},
		Logger:      logger,
	})

	return nil
}

// cleanup releases resources.
func cleanup() {
	if app != nil {
		app.Wait()
	}
	if logger != nil {
		_ = logger.Close()
	}
}

// printNavigator prints redirect URLs for the user to open. A terminal
// cannot navigate a browser on the wallet's behalf.
type printNavigator struct{}

func (printNavigator) Navigate(url string) {
	fmt.Printf("Open this URL to continue in the wallet:\n  %s\n", url)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "nearlight data directory (default: ~/.nearlight)")
	rootCmd.PersistentFlags().StringVar(&networkID, "network", "", "network: mainnet, testnet")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node-url", "", "JSON-RPC endpoint override")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
