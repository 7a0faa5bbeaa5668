package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopledger/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize shopledger configuration and storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := a.dataDir()
			if err != nil {
				return systemError(err)
			}

			s := a.settings
			s.DataDir = dataDir
			configPath := filepath.Join(a.configDir, configFileExt)
			if _, err := writeConfigIfMissing(configPath, s); err != nil {
				return systemError(err)
			}

			return a.withLedger(cmd, func(b *store.Backend) error {
				out := cmd.OutOrStdout()
				if seed {
					stats, err := b.Seed(cmd.Context())
					if err != nil {
						return fmt.Errorf("seeding: %w", err)
					}
					if err := printLoadStats(out, a.flags.jsonMode, stats); err != nil {
						return err
					}
				}
				fmt.Fprintln(out, "shopledger initialized successfully")
				fmt.Fprintln(out, "  config:", a.configDir)
				fmt.Fprintln(out, "  data:  ", dataDir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the sample data after initializing")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in sample data",
		Long: "Seed loads the sample stores, employees, suppliers, customers, products\n" +
			"and orders. Rows whose ids already exist are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				stats, err := b.Seed(cmd.Context())
				if err != nil {
					return fmt.Errorf("seeding: %w", err)
				}
				return printLoadStats(cmd.OutOrStdout(), a.flags.jsonMode, stats)
			})
		},
	}
}
