package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"support-insights-go/internal/actionable"
	"support-insights-go/internal/types"
)

func (a *app) statsCmd() *cobra.Command {
	var f types.FilterState
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show headline metrics and suggested actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkPeriod(f); err != nil {
				return err
			}
			ov, err := a.stack.Service.Overview(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, ov)
			}

			fmt.Fprintln(out, styleHeader.Render("Dashboard")+" "+styleMuted.Render(describeFilters(f)))
			fmt.Fprintln(out)
			for _, c := range ov.Cards {
				fmt.Fprintln(out, renderCard(c))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleHeader.Render("Suggested actions"))
			for _, ac := range ov.Actions {
				fmt.Fprintf(out, "  %s %s\n", styleValue.Render("•"), ac.Insight)
				fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("action:"), ac.Action)
				fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("impact:"), ac.Impact)
			}
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func renderCard(c actionable.StatCard) string {
	value := styleValue.Render(c.Value)
	switch {
	case c.Alert:
		value = styleAlert.Render(c.Value + " !")
	case c.Trend == actionable.TrendUp:
		value = styleGood.Render(c.Value)
	}
	return "  " + styleLabel.Render(c.Title) + value + "  " + styleMuted.Render(c.Subtext)
}

func describeFilters(f types.FilterState) string {
	var parts []string
	if f.Agent != types.All {
		parts = append(parts, "agent="+f.Agent)
	}
	if f.Reason != types.All {
		parts = append(parts, "reason="+f.Reason)
	}
	parts = append(parts, "period="+f.Period)
	return "(" + strings.Join(parts, " ") + ")"
}
