package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pjwilcoxen/modeling-expectations/internal/config"
	"github.com/pjwilcoxen/modeling-expectations/internal/logging"
	"github.com/pjwilcoxen/modeling-expectations/internal/runner"
	"github.com/pjwilcoxen/modeling-expectations/internal/summary"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "model: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "model",
		Short:         "Dynamic partial-equilibrium investment model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "model.toml", "configuration file")

	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newSummaryCmd(&configPath))
	return root
}

func newRunCmd(configPath *string) *cobra.Command {
	var force, baseOnly bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve every simulation definition and persist the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("force") {
				cfg.Force = force
			}
			if cmd.Flags().Changed("base-only") {
				cfg.BaseOnly = baseOnly
			}
			return runner.New(cfg).RunAll()
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "recompute runs whose output already exists")
	cmd.Flags().BoolVar(&baseOnly, "base-only", false, "only run the baseline definition")
	return cmd
}

func newSummaryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print comparison tables for persisted results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return summary.Print(cfg, cmd.OutOrStdout())
		},
	}
}
