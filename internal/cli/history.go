package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/nearlight/internal/session"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// historyPending filters to non-terminal transactions.
	historyPending bool
)

// historyCmd lists the local transaction history.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var historyCmd = &cobra.Command{
	Use:   "history [tx-id]",
	Short: "Show local transaction history",
	Long: `Show the locally recorded transaction history, oldest first.

With a transaction id, shows that entry in full.`,
	Example: `  nearlight history
  nearlight history --pending
  nearlight history 1756713600000-abcde`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func runHistory(_ *cobra.Command, args []string) error {
	if len(args) == 1 {
		rec, ok := app.Session().Tx(args[0])
		if !ok {
			return nlerr.WithDetails(nlerr.ErrTransactionNotFound, map[string]string{
				"tx_id": args[0],
			})
		}
		return writeJSON(os.Stdout, rec)
	}

	records := app.LocalTxHistory()
	if historyPending {
		pending := records[:0]
		for _, rec := range records {
			if !rec.Status.Terminal() {
				pending = append(pending, rec)
			}
		}
		records = pending
	}
	if records == nil {
		records = []session.TxRecord{}
	}
	return writeJSON(os.Stdout, records)
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyPending, "pending", false, "show only non-terminal transactions")
}
