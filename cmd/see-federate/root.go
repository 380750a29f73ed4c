package main

import (
	"github.com/spf13/cobra"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/version"
)

var (
	configPath string // Federate configuration file
	logLevel   string // Overrides log.level from the configuration
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:          "see-federate",
	Short:        "Sample federate for time-stepped space exploration simulations",
	Version:      version.Current,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "federate.yaml", "Federate configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, discoverCmd, traceCmd)
}
