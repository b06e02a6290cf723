package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentdesk/internal/config"
	"agentdesk/internal/logging"
)

var (
	// Global flags
	configPath string
	debug      bool

	logger *zap.Logger
)

// rootCmd launches the interactive console.
var rootCmd = &cobra.Command{
	Use:   "agentdesk",
	Short: "agentdesk - contact-center agent console",
	Long: `agentdesk is a terminal console for contact-center agents.

It arranges the customer conversation, embedded line-of-business apps,
copilot suggestions, and knowledge search in an adaptive four-panel
layout, persisted per operator role. The customer side of the chat is
simulated so the console can be exercised without live traffic.

Run without arguments to start the console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(logging.Options{
			Debug: debug || cfg.Logging.Debug,
			File:  cfg.Logging.File,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole()
	},
}

// serveCmd runs the demo knowledge backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo knowledge backend",
	Long: `Starts the HTTP backend the console talks to: knowledge search,
embedded-app search, and the template and intent config documents.
Articles live in a local SQLite database.`,
	RunE: runServe,
}

var (
	serveAddr string
	serveDB   string
	serveSeed bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8980", "listen address")
	serveCmd.Flags().StringVar(&serveDB, "db", "agentdesk.db", "article database path")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", true, "seed the sample article corpus")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
