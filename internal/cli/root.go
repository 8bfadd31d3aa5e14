// Package cli implements the mediabench command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mediabench/mediabench/internal/config"
	"github.com/mediabench/mediabench/pkg/utils"
)

var (
	cfg     *config.Configuration
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "mediabench",
	Short: "Multimedia storage-backend benchmark harness",
	Long: `mediabench measures multimedia asset retrieval across storage backends.

It presents a sequence of validated asset cases from the configured
provider (S3, Dropbox, Google Drive, GridFS or a local origin), times
repeated no-cache fetches of every asset, and writes the collected
measurements to a CSV report.

Quick start:
  mediabench serve --config mediabench.yaml     # host local assets
  mediabench cases --config mediabench.yaml     # inspect case validity
  mediabench run   --config mediabench.yaml     # run the full survey`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Secrets referenced as ${VAR} in the config file may live in .env.
		_ = godotenv.Load()

		path, _ := cmd.Flags().GetString("config")
		var err error
		if path != "" {
			cfg, err = config.LoadFromFile(path)
			if err != nil {
				return err
			}
		} else {
			cfg = config.NewDefault()
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Global.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if _, err := utils.ParseLogLevel(cfg.Global.LogLevel); err != nil {
			return err
		}
		utils.SetupLogging(cfg.Global.LogLevel, os.Stderr)
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(serveCmd)
}
