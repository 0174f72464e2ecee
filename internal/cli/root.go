// Package cli contains the cobra command tree for dashctl, the terminal
// front end to the support dashboard.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"support-insights-go/internal/bootstrap"
	"support-insights-go/internal/config"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

// app holds the flags and the service stack shared by every subcommand.
type app struct {
	jsonOut bool
	noColor bool
	envFile string

	stack *bootstrap.Stack
}

// NewRootCmd builds a fresh command tree. Each call gets its own flag state.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "dashctl",
		Short: "Customer-service analytics from the terminal",
		Long: `dashctl reads the support interaction store and prints the same
metrics, listings and AI insights the dashboard API serves.

Configuration comes from the environment and an optional .env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				setNoColor()
			}
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			// stdout belongs to command output
			logger.SetOutput(cmd.ErrOrStderr())
			st, err := bootstrap.Open(cfg)
			if err != nil {
				return err
			}
			a.stack = st
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.stack == nil {
				return nil
			}
			return a.stack.Close()
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Output as JSON")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Env file loaded before the environment is read")

	root.AddCommand(
		a.statsCmd(),
		a.listCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.chartCmd(),
		a.insightCmd(),
		a.importCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addFilterFlags registers the dashboard filter flags on cmd.
func addFilterFlags(cmd *cobra.Command, f *types.FilterState) {
	*f = types.DefaultFilters()
	cmd.Flags().StringVar(&f.Agent, "agent", types.All, "Only this agent")
	cmd.Flags().StringVar(&f.Reason, "reason", types.All, "Only this closure reason")
	cmd.Flags().StringVar(&f.Period, "period", types.PeriodAll, "all, today, 7d, 30d or 90d")
}

func checkPeriod(f types.FilterState) error {
	if !types.ValidPeriod(f.Period) {
		return fmt.Errorf("unknown period %q", f.Period)
	}
	return nil
}
