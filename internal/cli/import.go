package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"support-insights-go/internal/dataset"
)

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Load a spreadsheet export into the local SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.stack.SQLite == nil {
				return errors.New("import needs STORE_DRIVER=sqlite")
			}
			records, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			n, err := a.stack.SQLite.Insert(cmd.Context(), records)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, map[string]any{"file": args[0], "imported": n})
			}
			fmt.Fprintf(out, "Imported %d interactions from %s\n", n, args[0])
			return nil
		},
	}
}
