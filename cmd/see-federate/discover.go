package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/config"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/discovery"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/version"
)

var (
	discoverFederation string        // Only list CRCs hosting this federation
	discoverTimeout    time.Duration // How long to browse
	discoverInterface  string        // Network interface to browse on
)

// discoverCmd lists central runtime components announced via mDNS
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Browse the local network for central runtime components",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := discoverTimeout
		if timeout == 0 {
			timeout = config.DefaultDiscoveryTimeout
			if cfg, err := config.Load(configPath); err == nil {
				timeout = cfg.RTI.DiscoveryTimeout
				if discoverFederation == "" {
					discoverFederation = cfg.Federation
				}
			}
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{
			BrowseTimeout: timeout,
			Interface:     discoverInterface,
		}, logger)
		defer browser.Stop()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		found, err := browser.BrowseCRC(ctx)
		if err != nil {
			return err
		}

		count := 0
		for svc := range found {
			if discoverFederation != "" && svc.Federation != discoverFederation {
				continue
			}
			count++
			fmt.Printf("%-32s %-24s %s", svc.InstanceName, svc.Federation, svc.Address())
			if svc.Vendor != "" {
				fmt.Printf("  %s", svc.Vendor)
			}
			if svc.Version != "" {
				fmt.Printf("  v%s", svc.Version)
				if !version.CompatibleWith(svc.Version) {
					fmt.Print(" (incompatible)")
				}
			}
			fmt.Println()
		}
		if count == 0 {
			return discovery.ErrNotFound
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverFederation, "federation", "", "Only list CRCs hosting this federation")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 0, "Browse duration (default from config or 5s)")
	discoverCmd.Flags().StringVar(&discoverInterface, "interface", "", "Network interface to browse on")
}
