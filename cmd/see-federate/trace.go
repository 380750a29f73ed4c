package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/cmd/see-federate/commands"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/log"
)

var (
	traceDirection string // Filter by direction
	traceCategory  string // Filter by category
	traceCall      string // Filter by call name
	traceSession   string // Filter by session ID
)

// traceCmd groups the trace file tools
var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect CBOR trace files written by the run command",
}

var traceViewCmd = &cobra.Command{
	Use:   "view <trace.cbor>",
	Short: "View a trace file in human-readable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := log.Filter{Call: traceCall, SessionID: traceSession}
		if traceDirection != "" {
			d, err := commands.ParseDirectionFlag(traceDirection)
			if err != nil {
				return err
			}
			filter.Direction = &d
		}
		if traceCategory != "" {
			c, err := commands.ParseCategoryFlag(traceCategory)
			if err != nil {
				return err
			}
			filter.Category = &c
		}
		return commands.RunView(args[0], filter, os.Stdout)
	},
}

var traceStatsCmd = &cobra.Command{
	Use:   "stats <trace.cbor>",
	Short: "Show statistics about a trace file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunStats(args[0], os.Stdout)
	},
}

func init() {
	traceViewCmd.Flags().StringVar(&traceDirection, "direction", "", "Filter by direction (in, out, local)")
	traceViewCmd.Flags().StringVar(&traceCategory, "category", "", "Filter by category (federation, declaration, object, interaction, time, sync, state, error)")
	traceViewCmd.Flags().StringVar(&traceCall, "call", "", "Filter by call or callback name")
	traceViewCmd.Flags().StringVar(&traceSession, "session", "", "Filter by session ID")

	traceCmd.AddCommand(traceViewCmd, traceStatsCmd)
}
