// Package bootstrap builds the service graph from configuration. Both the API
// server and the CLI start here.
package bootstrap

import (
	"fmt"

	"support-insights-go/internal/aggregator"
	"support-insights-go/internal/config"
	"support-insights-go/internal/dashboard"
	"support-insights-go/internal/gateway"
	"support-insights-go/internal/insight"
	"support-insights-go/internal/logger"
	"support-insights-go/internal/session"
)

type Stack struct {
	Config  *config.Config
	Service *dashboard.Service
	Gateway *gateway.Gateway
	Auth    session.Authenticator
	// SQLite is set only when the sqlite driver is selected.
	SQLite *gateway.SQLite
}

func (s *Stack) Close() error {
	if s.SQLite != nil {
		return s.SQLite.Close()
	}
	return nil
}

// Open configures logging and builds every component cfg selects.
func Open(cfg *config.Config) (*Stack, error) {
	logger.Configure(cfg.Environment, cfg.LogLevel)
	log := logger.New().WithField("component", "bootstrap")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st := &Stack{Config: cfg}
	var src gateway.Source
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := gateway.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		st.SQLite = db
		src = db
	case config.DriverPostgREST:
		src = gateway.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseKey)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	st.Gateway = gateway.New(src, cfg.StoreBatchSize)

	client := insight.NewClient(insight.Options{
		Endpoints: insight.Endpoints{
			Agent:      cfg.InsightWebhookAgentURL,
			Department: cfg.InsightWebhookDepartmentURL,
			Reason:     cfg.InsightWebhookReasonURL,
		},
		Timeout:    cfg.InsightTimeout(),
		RatePerMin: cfg.InsightRatePerMin,
		Mock:       cfg.UseMockInsight,
	})

	st.Service = dashboard.New(st.Gateway, aggregator.New(loc), client, dashboard.WithWindow(cfg.Window()))

	if cfg.AuthMode == config.AuthNone {
		log.Warn("authentication disabled, every request runs as the local user")
		st.Auth = session.NoAuth()
	} else {
		st.Auth = session.NewVerifier(cfg.AuthJWTSecret)
	}

	log.WithField("store", cfg.StoreDriver).WithField("timezone", loc.String()).Info("service graph ready")
	return st, nil
}
