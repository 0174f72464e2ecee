package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"support-insights-go/internal/export"
	"support-insights-go/internal/types"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		f       types.FilterState
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered interactions to a CSV or XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkPeriod(f); err != nil {
				return err
			}
			fm, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			items, err := a.stack.Service.Subset(cmd.Context(), f)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = export.Filename(fm, a.stack.Service.Now())
			}
			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := export.Write(file, fm, items); err != nil {
				_ = file.Close()
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, map[string]any{"path": outPath, "rows": len(items), "format": fm})
			}
			fmt.Fprintf(out, "Wrote %d interactions to %s\n", len(items), outPath)
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default interactions-YYYYMMDD.<format>)")
	return cmd
}
