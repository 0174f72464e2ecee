package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-insights-go/internal/types"
)

var now = time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)

func at(daysAgo int) time.Time {
	return now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
}

func ids(items []types.Interaction) []types.ID {
	out := make([]types.ID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestEndToEnd_SevenDayWindow(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{
		{ID: "today", Timestamp: now.Add(-time.Hour), Score: 5},
		{ID: "yesterday", Timestamp: at(1), Score: 3},
		{ID: "old", Timestamp: at(8), Score: 1},
	}

	f := types.DefaultFilters()
	f.Period = types.Period7d
	filtered := e.Filter(items, f, now)

	assert.Equal(t, []types.ID{"today", "yesterday"}, ids(filtered))
	s := e.Summarize(filtered, now)
	assert.Equal(t, 4.0, s.AvgScore)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Today)
}

func TestFilter_Periods(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{
		{ID: "a", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "b", Timestamp: at(10)},
		{ID: "c", Timestamp: at(45)},
		{ID: "d", Timestamp: at(120)},
	}
	cases := map[string][]types.ID{
		types.PeriodAll:   {"a", "b", "c", "d"},
		types.PeriodToday: {"a"},
		types.Period7d:    {"a"},
		types.Period30d:   {"a", "b"},
		types.Period90d:   {"a", "b", "c"},
	}
	for period, want := range cases {
		f := types.DefaultFilters()
		f.Period = period
		assert.Equal(t, want, ids(e.Filter(items, f, now)), period)
	}
}

func TestFilter_WindowBoundaryIsExclusive(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{{ID: "edge", Timestamp: at(7)}}
	f := types.FilterState{Agent: types.All, Reason: types.All, Period: types.Period7d}
	assert.Empty(t, e.Filter(items, f, now))
}

func TestFilter_TodayUsesEngineLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*3600)
	e := New(saoPaulo)
	// 01:00 UTC on the 15th is still the 14th in BRT.
	items := []types.Interaction{{ID: "late", Timestamp: time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC)}}
	f := types.FilterState{Period: types.PeriodToday}
	assert.Empty(t, e.Filter(items, f, now))
	assert.Len(t, New(time.UTC).Filter(items, f, now), 1)
}

func TestFilter_ConjunctiveAndOrderIndependent(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{
		{ID: "1", AgentName: "Ana", Reason: "Vendas", Timestamp: at(1)},
		{ID: "2", AgentName: "Ana", Reason: "Suporte", Timestamp: at(2)},
		{ID: "3", AgentName: "Bruno", Reason: "Vendas", Timestamp: at(3)},
		{ID: "4", AgentName: "Ana", Reason: "Vendas", Timestamp: at(20)},
	}

	combined := e.Filter(items, types.FilterState{Agent: "Ana", Period: types.Period7d, Reason: types.All}, now)

	byAgent := e.Filter(items, types.FilterState{Agent: "Ana", Reason: types.All, Period: types.PeriodAll}, now)
	thenPeriod := e.Filter(byAgent, types.FilterState{Agent: types.All, Reason: types.All, Period: types.Period7d}, now)

	byPeriod := e.Filter(items, types.FilterState{Agent: types.All, Reason: types.All, Period: types.Period7d}, now)
	thenAgent := e.Filter(byPeriod, types.FilterState{Agent: "Ana", Reason: types.All, Period: types.PeriodAll}, now)

	assert.Equal(t, []types.ID{"1", "2"}, ids(combined))
	assert.Equal(t, ids(combined), ids(thenPeriod))
	assert.Equal(t, ids(combined), ids(thenAgent))

	withReason := e.Filter(items, types.FilterState{Agent: "Ana", Reason: "Vendas", Period: types.Period7d}, now)
	assert.Equal(t, []types.ID{"1"}, ids(withReason))
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{{ID: "x", AgentName: "Ana", Timestamp: at(1)}, {ID: "y", AgentName: "Bia", Timestamp: at(2)}}
	before := append([]types.Interaction(nil), items...)

	_ = e.Compute(items, types.FilterState{Agent: "Bia"}, now)

	assert.Equal(t, before, items)
}

func TestSummarize_Empty(t *testing.T) {
	s := New(time.UTC).Summarize(nil, now)
	assert.Equal(t, Summary{}, s)
}

func TestSummarize_RiskRatesSkipUnanalyzed(t *testing.T) {
	items := []types.Interaction{
		{Timestamp: at(1), ChurnRisk: 0},
		{Timestamp: at(1), ChurnRisk: 0},
		{Timestamp: at(1), ChurnRisk: 80, UpsellPotential: 50, DownsellRisk: 20},
		{Timestamp: at(1), UpsellPotential: 100, DownsellRisk: 21},
	}
	s := New(time.UTC).Summarize(items, now)
	assert.Equal(t, 80, s.ChurnRate)
	assert.Equal(t, 75, s.UpsellRate)
	assert.Equal(t, 21, s.DownsellRate)
}

func TestSummarize_RiskRatesSkipNegative(t *testing.T) {
	items := []types.Interaction{
		{Timestamp: at(1), ChurnRisk: -50},
		{Timestamp: at(1), ChurnRisk: 80, DownsellRisk: -90},
	}
	s := New(time.UTC).Summarize(items, now)
	assert.Equal(t, 80, s.ChurnRate)
	assert.Equal(t, 0, s.DownsellRate)
}

func TestSummarize_Averages(t *testing.T) {
	items := []types.Interaction{
		{Timestamp: now, Score: 5, DurationMinutes: 10, LeadScore: 7.25},
		{Timestamp: at(1), Score: 4, DurationMinutes: 15, LeadScore: 2},
		{Timestamp: at(2), Score: 0, DurationMinutes: 6, LeadScore: 0},
	}
	s := New(time.UTC).Summarize(items, now)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Today)
	assert.Equal(t, 3.0, s.AvgScore)
	assert.Equal(t, 10, s.AvgDurationMinutes)
	assert.Equal(t, 3.1, s.AvgLeadScore)
}

func TestEvolution_AscendingBuckets(t *testing.T) {
	e := New(time.UTC)
	// newest first, the way the store returns them
	items := []types.Interaction{
		{Timestamp: time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC), Score: 2},
		{Timestamp: time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC), Score: 5},
		{Timestamp: time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC), Score: 4},
	}

	got := e.Evolution(items)

	require.Len(t, got, 2)
	assert.Equal(t, EvolutionPoint{Date: "2025-06-12", Label: "12/06", Score: 4, Total: 1}, got[0])
	assert.Equal(t, EvolutionPoint{Date: "2025-06-14", Label: "14/06", Score: 3.5, Total: 2}, got[1])
}

func TestDistribution_ExcludesUnrated(t *testing.T) {
	var items []types.Interaction
	for _, s := range []int{0, 1, 3, 3, 5} {
		items = append(items, types.Interaction{Score: s})
	}

	got := Distribution(items)

	assert.Equal(t, []DistributionBucket{
		{Score: 1, Count: 1},
		{Score: 2, Count: 0},
		{Score: 3, Count: 2},
		{Score: 4, Count: 0},
		{Score: 5, Count: 1},
	}, got)
	total := 0
	for _, b := range got {
		total += b.Count
	}
	assert.Equal(t, 4, total)
	assert.Less(t, total, len(items))
}

func TestRecentAndOptions(t *testing.T) {
	items := []types.Interaction{
		{ID: "1", AgentName: "Carla", Reason: "Vendas", Timestamp: at(3)},
		{ID: "2", AgentName: "Ana", Reason: "Suporte", Timestamp: at(1)},
		{ID: "3", AgentName: "Carla", Reason: "Financeiro", Timestamp: at(2)},
	}

	assert.Equal(t, []types.ID{"2", "3"}, ids(Recent(items, 2)))

	opts := Options(items)
	assert.Equal(t, []string{"Ana", "Carla"}, opts.Agents)
	assert.Equal(t, []string{"Vendas", "Suporte", "Financeiro"}, opts.Reasons)
}

func TestCompute_BuildsReport(t *testing.T) {
	e := New(time.UTC)
	items := []types.Interaction{
		{ID: "1", AgentName: "Ana", Reason: "Vendas", Timestamp: at(1), Score: 4},
		{ID: "2", AgentName: "Bruno", Reason: "Vendas", Timestamp: at(2), Score: 2},
	}
	r := e.Compute(items, types.FilterState{Agent: "Ana", Reason: types.All, Period: types.Period30d}, now)

	assert.Equal(t, 1, r.Summary.Total)
	assert.Len(t, r.Evolution, 1)
	assert.Len(t, r.Recent, 1)
	assert.Equal(t, []string{"Ana", "Bruno"}, r.Options.Agents)
}
