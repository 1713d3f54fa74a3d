package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/nearlight/internal/keys"
	"github.com/mrz1836/nearlight/internal/session"
	nlerr "github.com/mrz1836/nearlight/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// keysImportAccount is the account id associated with the imported key.
	keysImportAccount string
	// keysImportMnemonic reads a BIP-39 mnemonic instead of a raw key.
	keysImportMnemonic bool
	// keysDerivationPath overrides the mnemonic derivation path.
	keysDerivationPath string
)

// keysCmd is the parent command for key management.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage access keys",
	Long: `Manage the locally held access key.

The client holds at most one key at a time. Importing a key replaces the
previous one and invalidates the cached nonce.`,
}

// keysGenerateCmd creates a fresh key pair.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysGenerateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Generate a new key pair",
	Example: `  nearlight keys generate`,
	Args:    cobra.NoArgs,
	RunE:    runKeysGenerate,
}

// keysImportCmd imports a private key or mnemonic into the session.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a private key",
	Long: `Import a private key into the session. The key is read from stdin with
echo disabled; it never appears in shell history or process listings.

With --mnemonic, a BIP-39 phrase is read instead and the key is derived at
m/44'/397'/0' (or the path given with --path).`,
	Example: `  nearlight keys import --account alice.near
  nearlight keys import --account alice.near --mnemonic`,
	Args: cobra.NoArgs,
	RunE: runKeysImport,
}

// keysShowCmd prints the held public key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keysShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Show the held public key",
	Example: `  nearlight keys show`,
	Args:    cobra.NoArgs,
	RunE:    runKeysShow,
}

func runKeysGenerate(_ *cobra.Command, _ []string) error {
	kp, err := keys.Generate()
	if err != nil {
		return err
	}

	return writeJSON(os.Stdout, struct {
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
	}{
		PublicKey:  kp.PublicKeyString(),
		PrivateKey: kp.PrivateKeyString(),
	})
}

func runKeysImport(_ *cobra.Command, _ []string) error {
	var kp *keys.KeyPair

	if keysImportMnemonic {
		phrase, err := readSecret("Mnemonic: ")
		if err != nil {
			return err
		}
		path := keysDerivationPath
		if path == "" {
			path = keys.DefaultDerivationPath
		}
		kp, err = keys.FromMnemonic(phrase, path)
		if err != nil {
			return err
		}
	} else {
		raw, err := readSecret("Private key: ")
		if err != nil {
			return err
		}
		kp, err = keys.ParsePrivateKey(raw)
		if err != nil {
			return err
		}
	}

	app.Session().Update(session.Patch{
		AccountID:           session.String(keysImportAccount),
		PrivateKey:          session.String(kp.PrivateKeyString()),
		AccessKeyContractID: session.String(""),
	})

	fmt.Printf("Imported key %s for %s\n", kp.PublicKeyString(), keysImportAccount)
	return nil
}

func runKeysShow(_ *cobra.Command, _ []string) error {
	pub := app.PublicKey()
	if pub == "" {
		return nlerr.WithSuggestion(nlerr.ErrNotSignedIn,
			"import a key with: nearlight keys import --account <id>")
	}

	return writeJSON(os.Stdout, struct {
		AccountID  string `json:"account_id"`
		PublicKey  string `json:"public_key"`
		AuthStatus string `json:"auth_status"`
	}{
		AccountID:  app.AccountID(),
		PublicKey:  pub,
		AuthStatus: string(app.AuthStatus()),
	})
}

// readSecret reads a line from the terminal with echo disabled, falling back
// to a plain read when stdin is not a terminal (pipes in scripts and tests).
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print(prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", nlerr.Wrap(err, "reading secret")
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nlerr.Wrap(err, "reading secret")
	}
	return strings.TrimSpace(line), nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysImportCmd)
	keysCmd.AddCommand(keysShowCmd)

	keysImportCmd.Flags().StringVar(&keysImportAccount, "account", "", "account id the key belongs to (required)")
	keysImportCmd.Flags().BoolVar(&keysImportMnemonic, "mnemonic", false, "read a BIP-39 mnemonic instead of a raw key")
	keysImportCmd.Flags().StringVar(&keysDerivationPath, "path", "", `derivation path (default "m/44'/397'/0'")`)

	_ = keysImportCmd.MarkFlagRequired("account")
}
