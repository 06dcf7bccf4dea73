package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezshare/ezshare/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample ezshare configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/ezshare/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  ezshare init

  # Initialize with custom path
  ezshare init --config /etc/ezshare/config.yaml

  # Force overwrite existing config
  ezshare init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set shared_path to the directory you want to share")
	fmt.Println("  2. Create the first account with: ezshare account add")
	fmt.Println("  3. Start the server with: ezshare start")
	return nil
}
