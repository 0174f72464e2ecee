package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"support-insights-go/internal/charts"
	"support-insights-go/internal/types"
)

func (a *app) chartCmd() *cobra.Command {
	var (
		f       types.FilterState
		outPath string
	)
	cmd := &cobra.Command{
		Use:       "chart <evolution|distribution>",
		Short:     "Render a dashboard chart as PNG",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{charts.KindEvolution, charts.KindDistribution},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPeriod(f); err != nil {
				return err
			}
			ov, err := a.stack.Service.Overview(cmd.Context(), f)
			if err != nil {
				return err
			}
			var png []byte
			if args[0] == charts.KindEvolution {
				png, err = charts.RenderEvolution(ov.Evolution)
			} else {
				png, err = charts.RenderDistribution(ov.Distribution)
			}
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = args[0] + ".png"
			}
			if err := os.WriteFile(outPath, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s chart to %s\n", args[0], outPath)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default <kind>.png)")
	return cmd
}
