package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"support-insights-go/internal/transcript"
	"support-insights-go/internal/types"
)

type interactionDetail struct {
	types.Interaction
	Messages []transcript.Message `json:"messages"`
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one interaction with its conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			it, err := a.stack.Service.Interaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d := interactionDetail{Interaction: it, Messages: transcript.Parse(it.Transcript)}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, d)
			}

			loc := a.stack.Service.Location()
			fmt.Fprintln(out, styleHeader.Render("Interaction "+string(it.ID)))
			field := func(label, value string) {
				if value != "" {
					fmt.Fprintln(out, "  "+styleLabel.Render(label)+value)
				}
			}
			field("Date", it.Timestamp.In(loc).Format("02/01/2006 15:04"))
			field("Agent", it.AgentName)
			field("Customer", it.CustomerLabel)
			field("Ticket", it.Ticket)
			field("Reason", it.Reason)
			field("Closure", it.ClosureReason)
			field("Department", it.Department)
			field("Score", scoreText(it))
			field("Duration", fmt.Sprintf("%d min", it.DurationMinutes))
			field("Lead score", fmt.Sprintf("%.1f", it.LeadScore))
			field("Churn risk", fmt.Sprintf("%.0f%%", it.ChurnRisk))
			field("Upsell", fmt.Sprintf("%.0f%%", it.UpsellPotential))
			field("Downsell risk", fmt.Sprintf("%.0f%%", it.DownsellRisk))
			field("Summary", it.Summary)
			field("Improvements", it.ImprovementNotes)

			fmt.Fprintln(out)
			fmt.Fprintln(out, styleHeader.Render("Conversation"))
			if len(d.Messages) == 0 {
				fmt.Fprintln(out, styleMuted.Render("  No conversation recorded."))
				return nil
			}
			for _, m := range d.Messages {
				speaker := styleGood.Render("customer")
				if m.Role == transcript.RoleAgent {
					speaker = styleHeader.Render("agent   ")
				}
				fmt.Fprintf(out, "  %s  %s\n", speaker, m.Content)
			}
			return nil
		},
	}
}
