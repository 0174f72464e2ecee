package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

func init() {
	logger.SetOutput(io.Discard)
}

// fakeSource serves a fixed slice of records and records every query.
type fakeSource struct {
	records []types.RawRecord
	queries []Query
	failAt  int // 1-based call number that fails; 0 never fails
}

func (f *fakeSource) Select(_ context.Context, q Query) (Page, error) {
	f.queries = append(f.queries, q)
	if f.failAt > 0 && len(f.queries) == f.failAt {
		return Page{}, errors.New("connection refused")
	}
	var matched []types.RawRecord
	for _, r := range f.records {
		ok := true
		for k, v := range q.Eq {
			if fmt.Sprint(r[k]) != v {
				ok = false
			}
		}
		if ok {
			matched = append(matched, r)
		}
	}
	total := len(matched)
	if q.Offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return Page{Records: matched, Total: total}, nil
}

func makeRecords(n int) []types.RawRecord {
	out := make([]types.RawRecord, n)
	for i := range out {
		out[i] = types.RawRecord{
			types.ColID:            fmt.Sprint(i + 1),
			types.ColAgent:         fmt.Sprintf("agent-%d", i%3),
			types.ColClosureReason: fmt.Sprintf("reason-%d", i%2),
		}
	}
	return out
}

func TestListAll_PaginatesUntilShortBatch(t *testing.T) {
	src := &fakeSource{records: makeRecords(25)}
	g := New(src, 10)

	got, err := g.ListAll(context.Background(), DateRange{})

	require.NoError(t, err)
	assert.Len(t, got, 25)
	require.Len(t, src.queries, 3)
	assert.Equal(t, 0, src.queries[0].Offset)
	assert.Equal(t, 10, src.queries[1].Offset)
	assert.Equal(t, 20, src.queries[2].Offset)
	assert.NotContains(t, src.queries[0].Columns, types.ColConversationLog)
}

func TestListAll_ExactMultipleIssuesFinalEmptyBatch(t *testing.T) {
	src := &fakeSource{records: makeRecords(20)}
	got, err := New(src, 10).ListAll(context.Background(), DateRange{})
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Len(t, src.queries, 3)
}

func TestListAll_PropagatesErrors(t *testing.T) {
	src := &fakeSource{records: makeRecords(25), failAt: 2}
	_, err := New(src, 10).ListAll(context.Background(), DateRange{})
	assert.Error(t, err)
}

func TestDistinctValues(t *testing.T) {
	src := &fakeSource{records: makeRecords(7)}
	got := New(src, 3).DistinctValues(context.Background(), types.ColAgent, types.ColClosureReason, types.ColDepartment)

	assert.Equal(t, []string{"agent-0", "agent-1", "agent-2"}, got[types.ColAgent])
	assert.Equal(t, []string{"reason-0", "reason-1"}, got[types.ColClosureReason])
	assert.Empty(t, got[types.ColDepartment])
}

func TestDistinctValues_DegradesToEmptyOnError(t *testing.T) {
	src := &fakeSource{records: makeRecords(7), failAt: 2}
	got := New(src, 3).DistinctValues(context.Background(), types.ColAgent)
	assert.Equal(t, map[string][]string{types.ColAgent: {}}, got)
}

func TestGetByID(t *testing.T) {
	src := &fakeSource{records: makeRecords(3)}
	g := New(src, 10)

	rec, err := g.GetByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "2", rec[types.ColID])

	_, err = g.GetByID(context.Background(), "99")
	assert.ErrorIs(t, err, ErrNotFound)

	failing := New(&fakeSource{failAt: 1}, 10)
	_, err = failing.GetByID(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestList_BuildsPagedQuery(t *testing.T) {
	src := &fakeSource{records: makeRecords(9)}
	g := New(src, 10)

	recs, total, err := g.List(context.Background(), ListFilters{Agent: "agent-1", ClosureReason: types.All, Search: "T-"}, 2, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, recs, 1)
	q := src.queries[0]
	assert.Equal(t, 2, q.Offset)
	assert.Equal(t, 2, q.Limit)
	assert.True(t, q.Count)
	assert.Equal(t, "T-", q.TicketLike)
	assert.Equal(t, map[string]string{types.ColAgent: "agent-1"}, q.Eq)
}

func TestRecent_DegradesOnError(t *testing.T) {
	g := New(&fakeSource{failAt: 1}, 10)
	assert.Empty(t, g.Recent(context.Background(), types.ColAgent, "x", 20))
}
