package actionable

import (
	"fmt"

	"support-insights-go/internal/aggregator"
)

// Alert thresholds on the dashboard risk rates, in percent.
const (
	ChurnAlert    = 30
	DownsellAlert = 20
	UpsellStrong  = 50
	LowScore      = 3.0
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// StatCard is one headline metric as shown on the dashboard grid.
type StatCard struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Value   string `json:"value"`
	Subtext string `json:"subtext"`
	Trend   Trend  `json:"trend"`
	Alert   bool   `json:"alert"`
}

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// StatCards renders the summary as the eight dashboard cards, in display order.
func StatCards(s aggregator.Summary) []StatCard {
	churnAlert := s.ChurnRate > ChurnAlert
	downAlert := s.DownsellRate > DownsellAlert
	return []StatCard{
		{Key: "total", Title: "Total interactions", Value: fmt.Sprint(s.Total), Subtext: "In the selected period", Trend: TrendNeutral},
		{Key: "today", Title: "Interactions today", Value: fmt.Sprint(s.Today), Subtext: "So far", Trend: TrendNeutral},
		{Key: "avg_score", Title: "Average score", Value: fmt.Sprintf("%.1f", s.AvgScore), Subtext: "Based on ratings", Trend: TrendNeutral},
		{Key: "avg_duration", Title: "Average handling time", Value: fmt.Sprintf("%d min", s.AvgDurationMinutes), Subtext: "Per interaction", Trend: TrendNeutral},
		{Key: "avg_lead_score", Title: "Average lead score", Value: fmt.Sprintf("%.1f", s.AvgLeadScore), Subtext: "Lead quality", Trend: TrendNeutral},
		{Key: "churn_rate", Title: "Churn rate", Value: fmt.Sprintf("%d%%", s.ChurnRate), Subtext: "Cancellation risk", Trend: trendIf(churnAlert, TrendDown), Alert: churnAlert},
		{Key: "upsell_rate", Title: "Upsell potential", Value: fmt.Sprintf("%d%%", s.UpsellRate), Subtext: "Opportunity", Trend: TrendUp},
		{Key: "downsell_rate", Title: "Downsell risk", Value: fmt.Sprintf("%d%%", s.DownsellRate), Subtext: "Contraction risk", Trend: trendIf(downAlert, TrendDown), Alert: downAlert},
	}
}

// Generate suggests follow-up actions for the risks visible in the summary.
// It always returns at least one card.
func Generate(s aggregator.Summary) []ActionCard {
	var cards []ActionCard
	if s.ChurnRate > ChurnAlert {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("High churn risk (%d%%)", s.ChurnRate),
			Action:  "Route at-risk customers to retention; review the closure reasons behind the flagged interactions",
			Impact:  "Reduce cancellations in the coming cycle",
		})
	}
	if s.DownsellRate > DownsellAlert {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Elevated downsell risk (%d%%)", s.DownsellRate),
			Action:  "Schedule account reviews for customers signalling plan reductions",
			Impact:  "Protect recurring revenue",
		})
	}
	if s.UpsellRate >= UpsellStrong {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Strong upsell potential (%d%%)", s.UpsellRate),
			Action:  "Hand qualified conversations to sales with the interaction summary attached",
			Impact:  "Convert existing demand into expansion revenue",
		})
	}
	if s.Total > 0 && s.AvgScore > 0 && s.AvgScore < LowScore {
		cards = append(cards, ActionCard{
			Insight: fmt.Sprintf("Low average score (%.1f)", s.AvgScore),
			Action:  "Generate an agent insight for the lowest-rated agents and review their transcripts",
			Impact:  "Raise customer satisfaction",
		})
	}
	if len(cards) == 0 {
		cards = append(cards, ActionCard{
			Insight: "No strong risk pattern detected",
			Action:  "Monitor and collect more data",
			Impact:  "Low immediate intervention",
		})
	}
	return cards
}

func trendIf(cond bool, t Trend) Trend {
	if cond {
		return t
	}
	return TrendNeutral
}
