package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// signInCmd starts the wallet sign-in flow.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signInCmd = &cobra.Command{
	Use:   "sign-in <contract-id>",
	Short: "Sign in through the web wallet",
	Long: `Request a function-call access key for a contract through the web wallet.

A fresh key pair is generated locally and the wallet login URL is printed.
After approving in the wallet, complete sign-in by passing the return URL
to: nearlight redirect <url>`,
	Example: `  nearlight sign-in counter.near`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSignIn,
}

// signOutCmd clears the session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signOutCmd = &cobra.Command{
	Use:     "sign-out",
	Short:   "Clear the account and held key",
	Example: `  nearlight sign-out`,
	Args:    cobra.NoArgs,
	RunE:    runSignOut,
}

// redirectCmd reconciles a wallet return URL.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var redirectCmd = &cobra.Command{
	Use:   "redirect <url>",
	Short: "Process a wallet return URL",
	Long: `Reconcile the wallet's return URL against local state: complete a
pending sign-in, attach transaction hashes, or mark rejected transactions.

The URL is printed back with the consumed parameters removed.`,
	Example: `  nearlight redirect 'https://app.example.com/?account_id=alice.near&public_key=ed25519:...'`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRedirect,
}

// statusCmd shows the session state.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show session status",
	Example: `  nearlight status`,
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

func runSignIn(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, defaultTimeout)
	defer cancel()
	return app.RequestSignIn(ctx, args[0])
}

func runSignOut(_ *cobra.Command, _ []string) error {
	app.SignOut()
	fmt.Println("Signed out")
	return nil
}

func runRedirect(_ *cobra.Command, args []string) error {
	cleaned, err := app.HandleRedirect(args[0])
	if err != nil {
		return err
	}
	app.Wait()
	fmt.Println(cleaned)
	return nil
}

func runStatus(_ *cobra.Command, _ []string) error {
	st := app.Session().State()
	return writeJSON(os.Stdout, struct {
		Network    string `json:"network"`
		AuthStatus string `json:"auth_status"`
		AccountID  string `json:"account_id,omitempty"`
		PublicKey  string `json:"public_key,omitempty"`
		ContractID string `json:"access_key_contract_id,omitempty"`
	}{
		Network:    cfg.Network.NetworkID,
		AuthStatus: string(app.AuthStatus()),
		AccountID:  st.AccountID,
		PublicKey:  st.PublicKey,
		ContractID: st.AccessKeyContractID,
	})
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(signInCmd)
	rootCmd.AddCommand(signOutCmd)
	rootCmd.AddCommand(redirectCmd)
	rootCmd.AddCommand(statusCmd)
}
