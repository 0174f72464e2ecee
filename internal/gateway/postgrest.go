package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

// Table is the store table holding interactions.
const Table = "atendimento"

// PostgREST reads the atendimento table through a Supabase/PostgREST REST endpoint.
type PostgREST struct {
	endpoint     string
	apiKey       string
	client       *http.Client
	maxRetryTime time.Duration
	log          *logrus.Entry
}

type PostgRESTOption func(*PostgREST)

func WithHTTPClient(c *http.Client) PostgRESTOption {
	return func(p *PostgREST) { p.client = c }
}

// WithMaxRetryTime bounds the total time spent retrying a query; 0 disables retries.
func WithMaxRetryTime(d time.Duration) PostgRESTOption {
	return func(p *PostgREST) { p.maxRetryTime = d }
}

func NewPostgREST(baseURL, apiKey string, opts ...PostgRESTOption) *PostgREST {
	p := &PostgREST{
		endpoint:     strings.TrimRight(baseURL, "/") + "/rest/v1/" + Table,
		apiKey:       apiKey,
		client:       &http.Client{Timeout: 25 * time.Second},
		maxRetryTime: 12 * time.Second,
		log:          logger.New().WithField("component", "postgrest"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *PostgREST) Select(ctx context.Context, q Query) (Page, error) {
	u := p.endpoint + "?" + p.values(q).Encode()

	var page Page
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("apikey", p.apiKey)
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		req.Header.Set("Accept", "application/json")
		if q.Count {
			req.Header.Set("Prefer", "count=exact")
		}

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			p.log.WithError(err).Warn("postgrest request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("postgrest server error: status=%d body=%s", resp.StatusCode, string(body))
			return lastErr
		}
		if resp.StatusCode >= 300 {
			// Permanent: malformed query or auth problem, retrying won't help
			lastErr = fmt.Errorf("postgrest error: status=%d body=%s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}

		records, err := decodeRecords(body)
		if err != nil {
			lastErr = fmt.Errorf("postgrest decode: %w", err)
			return backoff.Permanent(lastErr)
		}
		page = Page{Records: records}
		if q.Count {
			page.Total = totalFromContentRange(resp.Header.Get("Content-Range"), len(records))
		}
		lastErr = nil
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.maxRetryTime
	var policy backoff.BackOff = b
	if p.maxRetryTime <= 0 {
		policy = &backoff.StopBackOff{}
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		if lastErr != nil {
			return Page{}, lastErr
		}
		return Page{}, err
	}
	return page, nil
}

func (p *PostgREST) values(q Query) url.Values {
	v := url.Values{}
	if len(q.Columns) > 0 {
		v.Set("select", strings.Join(q.Columns, ","))
	} else {
		v.Set("select", "*")
	}
	v.Set("order", types.ColDate+".desc")
	for _, k := range sortedKeys(q.Eq) {
		v.Add(k, "eq."+q.Eq[k])
	}
	if q.TicketLike != "" {
		v.Set(types.ColTicket, "ilike.*"+q.TicketLike+"*")
	}
	if !q.From.IsZero() {
		v.Add(types.ColDate, "gte."+q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		v.Add(types.ColDate, "lte."+q.To.UTC().Format(time.RFC3339))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func decodeRecords(body []byte) ([]types.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	out := make([]types.RawRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.RawRecord(r))
	}
	return out, nil
}

// totalFromContentRange reads the total from "0-19/57" or "*/0".
func totalFromContentRange(h string, fallback int) int {
	i := strings.LastIndex(h, "/")
	if i < 0 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(h[i+1:]))
	if err != nil {
		return fallback
	}
	return n
}
