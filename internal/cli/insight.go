package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"support-insights-go/internal/types"
)

// cliSubject owns insights generated from the terminal.
const cliSubject = "cli"

func (a *app) insightCmd() *cobra.Command {
	var contextType, value string
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate an AI insight for an agent, department or closure reason",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct, err := types.ParseContextType(contextType)
			if err != nil {
				return err
			}
			if value == "" {
				return fmt.Errorf("--value is required")
			}
			res, err := a.stack.Service.GenerateInsight(cmd.Context(), cliSubject, ct, value)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, res)
			}
			fmt.Fprintln(out, styleHeader.Render(fmt.Sprintf("Insight for %s %q", res.ContextType, res.Value)))
			fmt.Fprintln(out, styleMuted.Render("generated "+res.GeneratedAt.In(a.stack.Service.Location()).Format("02/01/2006 15:04")))
			fmt.Fprintln(out)
			section := func(title, body string) {
				fmt.Fprintln(out, styleValue.Render(title))
				fmt.Fprintln(out, "  "+body)
			}
			section("Summary", res.Insight.ShortSummary)
			section("Overview", res.Insight.Overview)
			section("Strength", res.Insight.Strength)
			section("Weakness", res.Insight.Weakness)
			section("Suggestion", res.Insight.ImprovementSuggestion)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextType, "type", string(types.ContextAgent), "agent, department or reason")
	cmd.Flags().StringVar(&value, "value", "", "Agent name, department or closure reason")
	return cmd
}
