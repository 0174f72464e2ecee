package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

var (
	// ErrGenerationFailed wraps every transport, status or configuration failure.
	ErrGenerationFailed = errors.New("insight generation failed")
	ErrNoConversations  = errors.New("no conversations to analyse")
)

type Options struct {
	Endpoints  Endpoints
	Timeout    time.Duration
	RatePerMin int // 0 disables throttling
	Mock       bool
	HTTPClient *http.Client
}

// Client posts interaction batches to the analysis webhook. Failed calls are
// not retried.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	limiter   *rate.Limiter
	mock      bool
	log       *logrus.Entry
}

func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	c := &Client{
		endpoints: o.Endpoints,
		http:      hc,
		mock:      o.Mock,
		log:       logger.New().WithField("component", "insight-client"),
	}
	if o.RatePerMin > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.RatePerMin)), o.RatePerMin)
	}
	return c
}

// Generate sends items for the given context and returns the parsed insight.
// A response that is not valid JSON still yields an insight; only transport
// failures and non-2xx statuses are errors.
func (c *Client) Generate(ctx context.Context, ct types.ContextType, value string, items []types.Interaction) (types.Insight, error) {
	if len(items) == 0 {
		return types.Insight{}, ErrNoConversations
	}
	log := c.log.WithFields(logrus.Fields{"context_type": ct, "value": value, "conversations": len(items)})

	if c.mock {
		log.Info("mock insight mode ON - returning deterministic insight")
		return mockInsight(ct, value, items), nil
	}

	url := c.endpoints.URL(ct)
	if url == "" {
		return types.Insight{}, fmt.Errorf("%w: no webhook configured for %s", ErrGenerationFailed, ct)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.Insight{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
	}

	data, err := json.Marshal(BuildPayload(items, ct, value))
	if err != nil {
		return types.Insight{}, fmt.Errorf("%w: encode payload: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return types.Insight{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(logger.RequestIDHeader, reqID)
	log = log.WithField("req_id", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Error("insight webhook request failed")
		return types.Insight{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Insight{}, fmt.Errorf("%w: read body: %v", ErrGenerationFailed, err)
	}
	log = log.WithFields(logrus.Fields{"http_status": resp.StatusCode, "elapsed": time.Since(start).String()})
	log.Debug("insight webhook raw:\n" + string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("insight webhook returned non-2xx")
		return types.Insight{}, fmt.Errorf("%w: status=%d", ErrGenerationFailed, resp.StatusCode)
	}

	ins := ParseResponse(string(body))
	log.Info("insight generated")
	return ins, nil
}

func mockInsight(ct types.ContextType, value string, items []types.Interaction) types.Insight {
	total := 0
	for _, it := range items {
		total += it.Score
	}
	avg := float64(total) / float64(len(items))
	return types.Insight{
		Overview:              fmt.Sprintf("%d recent interactions reviewed for %s %q; average score %.1f.", len(items), ct, value, avg),
		ShortSummary:          "Service is consistent; response times drive most low scores.",
		Strength:              "Clear, polite greetings and quick identification of the request.",
		Weakness:              "Follow-up after the first answer is often missing.",
		ImprovementSuggestion: "Close every conversation by confirming the issue is resolved.",
	}
}
