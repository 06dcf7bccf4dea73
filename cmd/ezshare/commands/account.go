package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezshare/ezshare/pkg/auth"
	"github.com/ezshare/ezshare/pkg/config"
	"github.com/ezshare/ezshare/pkg/models"
	"github.com/ezshare/ezshare/pkg/store"
)

var (
	accountIdentityToken string
	accountPasswordHash  string
	accountEmail         string
	accountClipboard     bool
	accountUpload        bool
	accountRegister      bool
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts in the credential store",
}

// Credentials never travel to the server in plaintext, so the CLI takes the
// client-derived values directly: identityToken = KDF(username, username
// twice as salt) and passwordHash = KDF(password, identityToken), the same
// derivation the web client performs. The server-side salt and re-hash are
// applied here before storage.
var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an account from client-derived credentials",
	Long: `Add an account to the credential store.

The --identity-token and --password-hash values are the client-side KDF
outputs, not a plaintext username or password. Use this to bootstrap the
first account (give it --register so it can create others through the API).

Examples:
  # Bootstrap an admin-ish first account
  ezshare account add --identity-token <token> --password-hash <hash> \
    --clipboard --upload --register

  # Restricted account for a guest
  ezshare account add --identity-token <token> --password-hash <hash>`,
	RunE: runAccountAdd,
}

func init() {
	accountAddCmd.Flags().StringVar(&accountIdentityToken, "identity-token", "", "client-derived identity token (required)")
	accountAddCmd.Flags().StringVar(&accountPasswordHash, "password-hash", "", "client-derived password hash (required)")
	accountAddCmd.Flags().StringVar(&accountEmail, "email", "", "contact email")
	accountAddCmd.Flags().BoolVar(&accountClipboard, "clipboard", false, "grant clipboard permission")
	accountAddCmd.Flags().BoolVar(&accountUpload, "upload", false, "grant upload permission")
	accountAddCmd.Flags().BoolVar(&accountRegister, "register", false, "grant register permission")
	_ = accountAddCmd.MarkFlagRequired("identity-token")
	_ = accountAddCmd.MarkFlagRequired("password-hash")

	accountCmd.AddCommand(accountAddCmd)
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		return err
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	storedHash, err := auth.DeriveKey(accountPasswordHash, salt)
	if err != nil {
		return err
	}

	id, err := st.CreateAccount(cmd.Context(), &models.Account{
		IdentityToken:    accountIdentityToken,
		PasswordHash:     storedHash,
		Salt:             salt,
		Email:            accountEmail,
		ClipboardAllowed: accountClipboard,
		UploadAllowed:    accountUpload,
		RegisterAllowed:  accountRegister,
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Account created (id: %s)\n", id)
	return nil
}
