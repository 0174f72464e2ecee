package aggregator

import (
	"math"
	"sort"
	"time"

	"support-insights-go/internal/types"
)

// Summary holds the headline numbers of the dashboard.
type Summary struct {
	Total              int     `json:"total"`
	Today              int     `json:"today"`
	AvgScore           float64 `json:"avg_score"`
	AvgDurationMinutes int     `json:"avg_duration_minutes"`
	AvgLeadScore       float64 `json:"avg_lead_score"`
	ChurnRate          int     `json:"churn_rate"`
	UpsellRate         int     `json:"upsell_rate"`
	DownsellRate       int     `json:"downsell_rate"`
}

type EvolutionPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Total int     `json:"total"`
}

type DistributionBucket struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

type FilterOptions struct {
	Agents  []string `json:"agents"`
	Reasons []string `json:"reasons"`
}

// Report bundles everything the dashboard shows for one filter state.
type Report struct {
	Filters      types.FilterState    `json:"filters"`
	Summary      Summary              `json:"summary"`
	Evolution    []EvolutionPoint     `json:"evolution"`
	Distribution []DistributionBucket `json:"distribution"`
	Recent       []types.Interaction  `json:"recent"`
	Options      FilterOptions        `json:"options"`
}

// RecentCount is how many interactions the dashboard lists as most recent.
const RecentCount = 5

// Engine computes filtered subsets and aggregates. Calendar days ("today",
// evolution buckets) are evaluated in the engine's location.
type Engine struct {
	loc *time.Location
}

func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

func (e *Engine) Location() *time.Location { return e.loc }

// Compute filters items and derives every dashboard aggregate from the result.
// Filter options are taken from the unfiltered input.
func (e *Engine) Compute(items []types.Interaction, f types.FilterState, now time.Time) Report {
	filtered := e.Filter(items, f, now)
	return Report{
		Filters:      f,
		Summary:      e.Summarize(filtered, now),
		Evolution:    e.Evolution(filtered),
		Distribution: Distribution(filtered),
		Recent:       Recent(filtered, RecentCount),
		Options:      Options(items),
	}
}

// Filter applies period, agent and reason filters. The input is not modified.
func (e *Engine) Filter(items []types.Interaction, f types.FilterState, now time.Time) []types.Interaction {
	out := make([]types.Interaction, 0, len(items))
	for _, it := range items {
		if !e.inPeriod(it.Timestamp, f.Period, now) {
			continue
		}
		if active(f.Agent) && it.AgentName != f.Agent {
			continue
		}
		if active(f.Reason) && it.Reason != f.Reason {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (e *Engine) inPeriod(ts time.Time, period string, now time.Time) bool {
	var days int
	switch period {
	case types.Period7d:
		days = 7
	case types.Period30d:
		days = 30
	case types.Period90d:
		days = 90
	case types.PeriodToday:
		return e.sameDay(ts, now)
	default:
		return true
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	return ts.After(cutoff)
}

// Summarize computes the stat cards. Risk rates average only interactions
// whose risk value is non-zero; a zero means the record was never analyzed.
func (e *Engine) Summarize(items []types.Interaction, now time.Time) Summary {
	s := Summary{Total: len(items)}
	if s.Total == 0 {
		return s
	}
	var scoreSum, durationSum, leadSum float64
	var churn, upsell, downsell rate
	for _, it := range items {
		if e.sameDay(it.Timestamp, now) {
			s.Today++
		}
		scoreSum += float64(it.Score)
		durationSum += float64(it.DurationMinutes)
		leadSum += it.LeadScore
		churn.add(it.ChurnRisk)
		upsell.add(it.UpsellPotential)
		downsell.add(it.DownsellRisk)
	}
	n := float64(s.Total)
	s.AvgScore = round1(scoreSum / n)
	s.AvgDurationMinutes = int(math.Round(durationSum / n))
	s.AvgLeadScore = round1(leadSum / n)
	s.ChurnRate = churn.mean()
	s.UpsellRate = upsell.mean()
	s.DownsellRate = downsell.mean()
	return s
}

type rate struct {
	sum   float64
	count int
}

// add skips unanalyzed (zero) and negative entries.
func (r *rate) add(v float64) {
	if v <= 0 {
		return
	}
	r.sum += v
	r.count++
}

func (r rate) mean() int {
	if r.count == 0 {
		return 0
	}
	return int(math.Round(r.sum / float64(r.count)))
}

// Evolution buckets interactions per calendar day, oldest day first.
func (e *Engine) Evolution(items []types.Interaction) []EvolutionPoint {
	ordered := make([]types.Interaction, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	type bucket struct {
		label string
		sum   float64
		count int
	}
	var keys []string
	buckets := map[string]*bucket{}
	for _, it := range ordered {
		local := it.Timestamp.In(e.loc)
		key := local.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{label: local.Format("02/01")}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.sum += float64(it.Score)
		b.count++
	}

	out := make([]EvolutionPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, EvolutionPoint{
			Date:  k,
			Label: b.label,
			Score: round1(b.sum / float64(b.count)),
			Total: b.count,
		})
	}
	return out
}

// Distribution counts scores 1..5. Unrated (0) interactions are left out.
func Distribution(items []types.Interaction) []DistributionBucket {
	out := make([]DistributionBucket, 5)
	for i := range out {
		out[i].Score = i + 1
	}
	for _, it := range items {
		if it.Score >= 1 && it.Score <= 5 {
			out[it.Score-1].Count++
		}
	}
	return out
}

// Recent returns up to n interactions, newest first.
func Recent(items []types.Interaction, n int) []types.Interaction {
	ordered := make([]types.Interaction, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.After(ordered[j].Timestamp)
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}

// Options lists the agents (sorted) and reasons (first-seen order) present in items.
func Options(items []types.Interaction) FilterOptions {
	agents := map[string]bool{}
	reasons := map[string]bool{}
	opts := FilterOptions{Agents: []string{}, Reasons: []string{}}
	for _, it := range items {
		if !agents[it.AgentName] {
			agents[it.AgentName] = true
			opts.Agents = append(opts.Agents, it.AgentName)
		}
		if !reasons[it.Reason] {
			reasons[it.Reason] = true
			opts.Reasons = append(opts.Reasons, it.Reason)
		}
	}
	sort.Strings(opts.Agents)
	return opts
}

func (e *Engine) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(e.loc).Date()
	by, bm, bd := b.In(e.loc).Date()
	return ay == by && am == bm && ad == bd
}

func active(v string) bool {
	return v != "" && v != types.All
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
