// Package dashboard wires the gateway, adapter, aggregator and insight client
// into the read operations the API and CLI expose.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"support-insights-go/internal/actionable"
	"support-insights-go/internal/adapter"
	"support-insights-go/internal/aggregator"
	"support-insights-go/internal/gateway"
	"support-insights-go/internal/insight"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/transcript"
	"support-insights-go/internal/types"
)

var (
	ErrNotFound = errors.New("interaction not found")
	// ErrSuperseded is returned when a newer generation for the same subject
	// started while this one was running; its result was discarded.
	ErrSuperseded = errors.New("insight superseded by a newer request")
)

// Generator produces an insight from a batch of interactions.
type Generator interface {
	Generate(ctx context.Context, ct types.ContextType, value string, items []types.Interaction) (types.Insight, error)
}

// Overview is the dashboard for one filter state.
type Overview struct {
	aggregator.Report
	Cards   []actionable.StatCard   `json:"cards"`
	Actions []actionable.ActionCard `json:"actions"`
	Catalog Catalog                 `json:"catalog"`
}

// Catalog lists every distinct filter value in the store.
type Catalog struct {
	Agents         []string `json:"agents"`
	ClosureReasons []string `json:"closure_reasons"`
	Departments    []string `json:"departments"`
}

type Page struct {
	Items    []types.Interaction `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type Service struct {
	gw     *gateway.Gateway
	engine *aggregator.Engine
	gen    Generator
	board  *insight.Board
	window time.Duration
	now    func() time.Time
	log    *logrus.Entry
}

type Option func(*Service)

// WithWindow limits dashboard loads to the last d; 0 loads everything.
func WithWindow(d time.Duration) Option {
	return func(s *Service) { s.window = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(gw *gateway.Gateway, engine *aggregator.Engine, gen Generator, opts ...Option) *Service {
	s := &Service{
		gw:     gw,
		engine: engine,
		gen:    gen,
		board:  insight.NewBoard(),
		window: 365 * 24 * time.Hour,
		now:    time.Now,
		log:    logger.New().WithField("component", "dashboard"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Overview loads the dashboard window and the store catalog concurrently,
// then aggregates the window under f.
func (s *Service) Overview(ctx context.Context, f types.FilterState) (Overview, error) {
	start := s.now()
	var (
		items   []types.Interaction
		catalog Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.load(gctx)
		return err
	})
	g.Go(func() error {
		catalog = s.Catalog(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	rep := s.engine.Compute(items, f, start)
	s.log.WithFields(logrus.Fields{
		"loaded":      len(items),
		"filtered":    rep.Summary.Total,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("dashboard computed")

	return Overview{
		Report:  rep,
		Cards:   actionable.StatCards(rep.Summary),
		Actions: actionable.Generate(rep.Summary),
		Catalog: catalog,
	}, nil
}

// Subset returns the filtered interactions behind the dashboard, newest first.
func (s *Service) Subset(ctx context.Context, f types.FilterState) ([]types.Interaction, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	filtered := s.engine.Filter(items, f, s.now())
	return aggregator.Recent(filtered, len(filtered)), nil
}

func (s *Service) load(ctx context.Context) ([]types.Interaction, error) {
	var r gateway.DateRange
	if s.window > 0 {
		r.From = s.now().Add(-s.window)
	}
	raws, err := s.gw.ListAll(ctx, r)
	if err != nil {
		return nil, err
	}
	return adapter.AdaptAll(raws), nil
}

// Interactions returns one page of the interaction list.
func (s *Service) Interactions(ctx context.Context, f gateway.ListFilters, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	raws, total, err := s.gw.List(ctx, f, page, pageSize)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: adapter.AdaptAll(raws), Total: total, Page: page, PageSize: pageSize}, nil
}

// Interaction looks up one interaction. Store failures are logged and
// reported as ErrNotFound.
func (s *Service) Interaction(ctx context.Context, id string) (types.Interaction, error) {
	raw, err := s.gw.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			s.log.WithError(err).WithField("id", id).Error("interaction lookup failed")
		}
		return types.Interaction{}, ErrNotFound
	}
	return adapter.Adapt(raw), nil
}

func (s *Service) Transcript(ctx context.Context, id string) ([]transcript.Message, error) {
	it, err := s.Interaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return transcript.Parse(it.Transcript), nil
}

// Catalog never fails; an unreachable store yields empty lists.
func (s *Service) Catalog(ctx context.Context) Catalog {
	sets := s.gw.DistinctValues(ctx, types.ColAgent, types.ColClosureReason, types.ColDepartment)
	return Catalog{
		Agents:         sets[types.ColAgent],
		ClosureReasons: sets[types.ColClosureReason],
		Departments:    sets[types.ColDepartment],
	}
}

// GenerateInsight analyses the most recent interactions of one agent,
// department or closure reason. Starting a generation discards the subject's
// previous insight; a failure leaves none.
func (s *Service) GenerateInsight(ctx context.Context, subject string, ct types.ContextType, value string) (insight.Result, error) {
	log := s.log.WithFields(logrus.Fields{"subject": subject, "context_type": ct, "value": value})
	ticket := s.board.Begin(subject)

	items := adapter.AdaptAll(s.gw.Recent(ctx, ct.Column(), value, ct.RecentLimit()))
	if len(items) == 0 {
		s.board.Fail(ticket)
		return insight.Result{}, insight.ErrNoConversations
	}

	ins, err := s.gen.Generate(ctx, ct, value, items)
	if err != nil {
		s.board.Fail(ticket)
		log.WithError(err).Warn("insight generation failed")
		return insight.Result{}, err
	}
	res, ok := s.board.Complete(ticket, ct, value, ins)
	if !ok {
		log.Info("insight discarded, a newer generation is running")
		return insight.Result{}, ErrSuperseded
	}
	return res, nil
}

// LatestInsight returns the subject's last completed insight.
func (s *Service) LatestInsight(subject string) (insight.Result, bool) {
	return s.board.Latest(subject)
}

// InsightPending reports whether a generation for subject is still running.
func (s *Service) InsightPending(subject string) bool {
	return s.board.Pending(subject)
}

// Location is the timezone calendar days are evaluated in.
func (s *Service) Location() *time.Location {
	return s.engine.Location()
}

// Now is the service clock in the dashboard timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.engine.Location())
}
