package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/nearlight/internal/amount"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// queryBlockID pins read queries to a block id, hash, or finality.
	queryBlockID string
)

// queryCmd is the parent command for read-only chain queries.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Read chain state",
	Long: `Read-only chain queries: contract views, accounts, access keys, blocks,
and transaction outcomes.

Queries run against the optimistic head by default. Use --block to pin a
query to a block height, a block hash, or the finality labels "final" and
"optimistic".`,
}

// queryViewCmd calls a contract view method.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryViewCmd = &cobra.Command{
	Use:   "view <contract> <method> [args-json]",
	Short: "Call a contract view method",
	Example: `  nearlight query view counter.near get_count
  nearlight query view token.near ft_balance_of '{"account_id": "alice.near"}'`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runQueryView,
}

// queryAccountCmd shows an account.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryAccountCmd = &cobra.Command{
	Use:     "account <account-id>",
	Short:   "Show an account",
	Example: `  nearlight query account alice.near`,
	Args:    cobra.ExactArgs(1),
	RunE:    runQueryAccount,
}

// queryKeyCmd shows one access key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryKeyCmd = &cobra.Command{
	Use:     "access-key <account-id> <public-key>",
	Short:   "Show an access key",
	Example: `  nearlight query access-key alice.near ed25519:H9k5...`,
	Args:    cobra.ExactArgs(2),
	RunE:    runQueryKey,
}

// queryBlockCmd shows a block header.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryBlockCmd = &cobra.Command{
	Use:   "block [block-id]",
	Short: "Show a block header",
	Example: `  nearlight query block
  nearlight query block final
  nearlight query block 191354103`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQueryBlock,
}

// queryTxCmd shows a transaction outcome.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var queryTxCmd = &cobra.Command{
	Use:     "tx <tx-hash> <sender-id>",
	Short:   "Show a transaction outcome",
	Example: `  nearlight query tx 8NcpW... alice.near`,
	Args:    cobra.ExactArgs(2),
	RunE:    runQueryTx,
}

func runQueryView(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	var callArgs any
	if len(args) == 3 {
		callArgs = json.RawMessage(args[2])
	}

	var result json.RawMessage
	if err := app.View(ctx, args[0], args[1], callArgs, queryBlockID, &result); err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

func runQueryAccount(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	view, err := app.Account(ctx, args[0], queryBlockID)
	if err != nil {
		return err
	}

	return writeJSON(os.Stdout, struct {
		AccountID   string `json:"account_id"`
		Amount      string `json:"amount"`
		AmountNEAR  string `json:"amount_near"`
		Locked      string `json:"locked"`
		StorageUsed uint64 `json:"storage_usage"`
		BlockHeight uint64 `json:"block_height"`
	}{
		AccountID:   args[0],
		Amount:      view.Amount,
		AmountNEAR:  amount.Format(view.Amount, amount.DecimalsNEAR),
		Locked:      view.Locked,
		StorageUsed: view.StorageUsage,
		BlockHeight: view.BlockHeight,
	})
}

func runQueryKey(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	view, err := app.AccessKey(ctx, args[0], args[1], queryBlockID)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, view)
}

func runQueryBlock(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	blockID := queryBlockID
	if len(args) == 1 {
		blockID = args[0]
	}

	view, err := app.Block(ctx, blockID)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, view)
}

func runQueryTx(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	result, err := app.TxStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryViewCmd)
	queryCmd.AddCommand(queryAccountCmd)
	queryCmd.AddCommand(queryKeyCmd)
	queryCmd.AddCommand(queryBlockCmd)
	queryCmd.AddCommand(queryTxCmd)

	queryCmd.PersistentFlags().StringVar(&queryBlockID, "block", "", "block id, hash, or finality (final, optimistic)")
}
