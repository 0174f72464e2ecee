// Package gateway reads atendimento rows from the backing store. It owns
// pagination and the per-operation error policy; backends only run single
// paged queries.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

var ErrNotFound = errors.New("interaction not found")

// DefaultBatchSize is the page size used by bulk reads.
const DefaultBatchSize = 1000

// Query is one paged read. Zero values mean "no constraint".
type Query struct {
	Columns    []string
	Eq         map[string]string
	TicketLike string
	From       time.Time
	To         time.Time
	Offset     int
	Limit      int
	Count      bool
}

// Page is the result of a Query. Total is only set when Query.Count is true.
type Page struct {
	Records []types.RawRecord
	Total   int
}

// Source runs a single query against a store, newest records first.
type Source interface {
	Select(ctx context.Context, q Query) (Page, error)
}

type ListFilters struct {
	Search        string
	Agent         string
	ClosureReason string
}

type DateRange struct {
	From time.Time
	To   time.Time
}

// dashboardColumns skips the conversation history, which the dashboard never reads.
var dashboardColumns = []string{
	types.ColID, types.ColDate, types.ColAgent, types.ColPhone, types.ColTicket,
	types.ColReason, types.ColScore, types.ColDuration, types.ColLeadScoring,
	types.ColChurn, types.ColUpsell, types.ColDownsell, types.ColShortQualifier,
	types.ColSummary, types.ColQualification, types.ColImprovements,
	types.ColClosureReason, types.ColDepartment, types.ColAIData,
}

type Gateway struct {
	src       Source
	batchSize int
	log       *logrus.Entry
}

func New(src Source, batchSize int) *Gateway {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Gateway{
		src:       src,
		batchSize: batchSize,
		log:       logger.New().WithField("component", "gateway"),
	}
}

// List returns one page (1-based) of records and the exact total.
func (g *Gateway) List(ctx context.Context, f ListFilters, page, pageSize int) ([]types.RawRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	q := Query{
		Eq:         map[string]string{},
		TicketLike: f.Search,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
		Count:      true,
	}
	if f.Agent != "" && f.Agent != types.All {
		q.Eq[types.ColAgent] = f.Agent
	}
	if f.ClosureReason != "" && f.ClosureReason != types.All {
		q.Eq[types.ColClosureReason] = f.ClosureReason
	}
	res, err := g.src.Select(ctx, q)
	if err != nil {
		g.log.WithError(err).Error("list interactions failed")
		return nil, 0, fmt.Errorf("list interactions: %w", err)
	}
	return res.Records, res.Total, nil
}

// GetByID returns the record with the given id or ErrNotFound.
func (g *Gateway) GetByID(ctx context.Context, id string) (types.RawRecord, error) {
	res, err := g.src.Select(ctx, Query{Eq: map[string]string{types.ColID: id}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("get interaction %s: %w", id, err)
	}
	if len(res.Records) == 0 {
		return nil, ErrNotFound
	}
	return res.Records[0], nil
}

// ListAll reads every record in the range, one batch after another, stopping
// at the first short batch.
func (g *Gateway) ListAll(ctx context.Context, r DateRange) ([]types.RawRecord, error) {
	var all []types.RawRecord
	for page := 0; ; page++ {
		res, err := g.src.Select(ctx, Query{
			Columns: dashboardColumns,
			From:    r.From,
			To:      r.To,
			Offset:  page * g.batchSize,
			Limit:   g.batchSize,
		})
		if err != nil {
			g.log.WithError(err).WithField("page", page).Error("dashboard batch failed")
			return nil, fmt.Errorf("list all interactions: %w", err)
		}
		all = append(all, res.Records...)
		if len(res.Records) < g.batchSize {
			break
		}
	}
	g.log.WithField("records", len(all)).Debug("dashboard data loaded")
	return all, nil
}

// DistinctValues collects the sorted non-empty values of each column across
// the whole table. A store error yields empty sets, never an error.
func (g *Gateway) DistinctValues(ctx context.Context, columns ...string) map[string][]string {
	seen := make(map[string]map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = map[string]bool{}
	}
	for page := 0; ; page++ {
		res, err := g.src.Select(ctx, Query{
			Columns: columns,
			Offset:  page * g.batchSize,
			Limit:   g.batchSize,
		})
		if err != nil {
			g.log.WithError(err).Error("fetching filter options failed")
			return emptySets(columns)
		}
		for _, rec := range res.Records {
			for _, c := range columns {
				if s, ok := rec[c].(string); ok && s != "" {
					seen[c][s] = true
				}
			}
		}
		if len(res.Records) < g.batchSize {
			break
		}
	}
	out := make(map[string][]string, len(columns))
	for c, set := range seen {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[c] = vals
	}
	return out
}

// Recent returns up to limit newest records where column equals value.
// Errors are logged and yield an empty result.
func (g *Gateway) Recent(ctx context.Context, column, value string, limit int) []types.RawRecord {
	res, err := g.src.Select(ctx, Query{Eq: map[string]string{column: value}, Limit: limit})
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{"column": column, "value": value}).Error("fetching recent interactions failed")
		return []types.RawRecord{}
	}
	return res.Records
}

func emptySets(columns []string) map[string][]string {
	out := make(map[string][]string, len(columns))
	for _, c := range columns {
		out[c] = []string{}
	}
	return out
}

// sortedKeys gives backends a deterministic filter order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
