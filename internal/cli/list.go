package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"support-insights-go/internal/gateway"
	"support-insights-go/internal/types"
)

func (a *app) listCmd() *cobra.Command {
	var (
		f        gateway.ListFilters
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List interactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if page < 1 {
				page = 1
			}
			if pageSize < 1 {
				pageSize = 20
			}
			res, err := a.stack.Service.Interactions(cmd.Context(), f, page, pageSize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, res)
			}
			if len(res.Items) == 0 {
				fmt.Fprintln(out, styleMuted.Render("No interactions match."))
				return nil
			}
			t := newTable("ID", "DATE", "AGENT", "CUSTOMER", "REASON", "SCORE")
			loc := a.stack.Service.Location()
			for _, it := range res.Items {
				t.add(string(it.ID), it.Timestamp.In(loc).Format("02/01/2006 15:04"), it.AgentName,
					truncate(it.CustomerLabel, 24), truncate(it.Reason, 32), scoreText(it))
			}
			fmt.Fprint(out, t.render())
			fmt.Fprintln(out, styleMuted.Render(fmt.Sprintf("page %d, %d of %d interactions", res.Page, len(res.Items), res.Total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "Ticket substring, case-insensitive")
	cmd.Flags().StringVar(&f.Agent, "agent", types.All, "Only this agent")
	cmd.Flags().StringVar(&f.ClosureReason, "reason", types.All, "Only this closure reason")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, from 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "Rows per page")
	return cmd
}

func scoreText(it types.Interaction) string {
	if it.Score == 0 {
		return "-"
	}
	return strconv.Itoa(it.Score)
}
