package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ezshare/ezshare/internal/logger"
	"github.com/ezshare/ezshare/pkg/api"
	"github.com/ezshare/ezshare/pkg/auth"
	"github.com/ezshare/ezshare/pkg/clipboard"
	"github.com/ezshare/ezshare/pkg/config"
	"github.com/ezshare/ezshare/pkg/share"
	"github.com/ezshare/ezshare/pkg/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ezshare server",
	Long: `Start the ezshare server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/ezshare/config.yaml.

Examples:
  # Start with default config location
  ezshare start

  # Start with custom config file
  ezshare start --config /etc/ezshare/config.yaml

  # Start with environment variable overrides
  EZSHARE_LOGGING_LEVEL=DEBUG ezshare start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	root, err := share.NewRoot(cfg.SharedPath)
	if err != nil {
		return err
	}
	logger.Info("Sharing path", "path", string(root))

	st, err := store.New(&cfg.Database)
	if err != nil {
		return err
	}

	if count, err := st.CountAccounts(cmd.Context()); err != nil {
		logger.Warn("Failed to count accounts", "error", err)
	} else if count == 0 {
		logger.Warn("No accounts exist yet; create one with 'ezshare account add'")
	}

	sessions := auth.NewRegistry(cfg.Session.Lifetime)
	defer sessions.Close()

	server := api.NewServer(cfg.API, api.Deps{
		Accounts:            st,
		Sessions:            sessions,
		Root:                root,
		Clipboard:           clipboard.System(),
		MaxUploadSize:       cfg.MaxUploadSize.Bytes(),
		ZipCompressionLevel: *cfg.ZipCompressionLevel,
		SessionLifetime:     cfg.Session.Lifetime,
		CookieSecure:        cfg.Session.CookieSecure,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Server is running. Press Ctrl+C to stop.")
	return server.Start(ctx)
}
