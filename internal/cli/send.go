package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/nearlight/internal/action"
	"github.com/mrz1836/nearlight/internal/amount"
	"github.com/mrz1836/nearlight/internal/client"
	"github.com/mrz1836/nearlight/internal/events"
	"github.com/mrz1836/nearlight/internal/session"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// sendGas is the gas attached to a function call.
	sendGas string
	// sendDeposit is the deposit attached to a function call.
	sendDeposit string
	// sendNoWait returns immediately instead of waiting for a terminal status.
	sendNoWait bool
)

// sendCmd is the parent command for transaction submission.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build, sign, and send transactions",
	Long: `Build, sign, and send transactions with the held access key.

Amounts accept unit suffixes: "1.5 NEAR", "100 Tgas", "500 Ggas". A bare
number is used as-is in the base denomination (yoctoNEAR or gas units).

Transactions the held key cannot sign are handed to the web wallet; the
command prints the wallet URL to open.`,
}

// sendTransferCmd sends NEAR tokens.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendTransferCmd = &cobra.Command{
	Use:   "transfer <receiver-id> <amount>",
	Short: "Transfer NEAR tokens",
	Example: `  nearlight send transfer bob.near "1.5 NEAR"
  nearlight send transfer bob.near 1500000000000000000000000`,
	Args: cobra.ExactArgs(2),
	RunE: runSendTransfer,
}

// sendCallCmd calls a contract method.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCallCmd = &cobra.Command{
	Use:   "call <contract> <method> [args-json]",
	Short: "Call a contract method",
	Example: `  nearlight send call counter.near increment '{"by": 2}'
  nearlight send call token.near ft_transfer '{"receiver_id":"bob.near","amount":"1"}' --deposit 1 --gas "100 Tgas"`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSendCall,
}

// sendFTCmd transfers fungible tokens through a token contract.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendFTCmd = &cobra.Command{
	Use:     "ft <token-contract> <receiver-id> <amount>",
	Short:   "Transfer fungible tokens",
	Example: `  nearlight send ft usdt.tether-token.near bob.near 1000000`,
	Args:    cobra.ExactArgs(3),
	RunE:    runSendFT,
}

func runSendTransfer(cmd *cobra.Command, args []string) error {
	yocto, err := amount.Parse(args[1])
	if err != nil {
		return err
	}

	act, err := action.NewTransfer(yocto)
	if err != nil {
		return err
	}

	return submit(cmd, args[0], []action.Action{act})
}

func runSendCall(cmd *cobra.Command, args []string) error {
	var callArgs any
	if len(args) == 3 {
		callArgs = json.RawMessage(args[2])
	}

	gas := action.DefaultGas
	if sendGas != "" {
		g, err := amount.Parse(sendGas)
		if err != nil {
			return err
		}
		gas = g
	}

	deposit := "0"
	if sendDeposit != "" {
		d, err := amount.Parse(sendDeposit)
		if err != nil {
			return err
		}
		deposit = d
	}

	act, err := action.NewFunctionCall(args[1], callArgs, "", gas, deposit)
	if err != nil {
		return err
	}

	return submit(cmd, args[0], []action.Action{act})
}

func runSendFT(cmd *cobra.Command, args []string) error {
	act, err := action.NewTransferFT(args[1], args[2], "")
	if err != nil {
		return err
	}
	return submit(cmd, args[0], []action.Action{act})
}

// submit sends the actions and, unless --no-wait is set, follows the
// transaction to a terminal status through the event bus.
func submit(cmd *cobra.Command, receiverID string, actions []action.Action) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()

	txID, err := app.SendTx(ctx, client.SendRequest{
		ReceiverID: receiverID,
		Actions:    actions,
	})
	if err != nil {
		return err
	}

	// Events published before the subscription are buffered and replayed,
	// so a fast terminal status is not lost.
	done := make(chan session.TxRecord, 1)
	app.OnTx(func(ev events.TxEvent) {
		rec, ok := ev.Record.(session.TxRecord)
		if !ok || ev.TxID != txID || !rec.Status.Terminal() {
			return
		}
		select {
		case done <- rec:
		default:
		}
	})

	fmt.Printf("Transaction %s submitted\n", txID)
	if sendNoWait {
		return nil
	}

	select {
	case rec := <-done:
		return writeJSON(os.Stdout, rec)
	case <-ctx.Done():
		fmt.Println("Still pending; check later with: nearlight history")
		return nil
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.AddCommand(sendTransferCmd)
	sendCmd.AddCommand(sendCallCmd)
	sendCmd.AddCommand(sendFTCmd)

	sendCallCmd.Flags().StringVar(&sendGas, "gas", "", `attached gas (default "30 Tgas")`)
	sendCallCmd.Flags().StringVar(&sendDeposit, "deposit", "", "attached deposit in NEAR units")
	sendCmd.PersistentFlags().BoolVar(&sendNoWait, "no-wait", false, "return without waiting for the outcome")
}
