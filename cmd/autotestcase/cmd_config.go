package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autotestcase/internal/config"
	"autotestcase/internal/console"
	"autotestcase/internal/logging"
)

var forceInit bool

// configCmd groups configuration helpers
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the autotestcase configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to the path given by --config.
API keys may be left empty and supplied through OPENAI_API_KEY or
GEMINI_API_KEY instead.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil {
		if !forceInit {
			return fmt.Errorf("configuration file %q already exists (use --force to overwrite)", configPath)
		}
		logging.BootWarn("overwriting existing configuration %s", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}
	console.New(cmd.OutOrStdout()).Success("Configuration written to %s", configPath)
	return nil
}
