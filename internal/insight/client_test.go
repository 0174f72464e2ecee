package insight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-insights-go/internal/logger"
	"support-insights-go/internal/types"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestClientGenerate_PostsToContextEndpoint(t *testing.T) {
	var got types.InsightPayload
	var path, reqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		reqID = r.Header.Get(logger.RequestIDHeader)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`[{"output":{"insight_geral":"ok","ponto_fraco":"lento"}}]`))
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: Endpoints{
		Agent:      srv.URL + "/insight",
		Department: srv.URL + "/insight_departamento",
		Reason:     srv.URL + "/insight_motivo_fechamento",
	}})

	ins, err := c.Generate(context.Background(), types.ContextReason, "Cancelado", sampleItems())

	require.NoError(t, err)
	assert.Equal(t, "/insight_motivo_fechamento", path)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, types.ContextReason, got.ContextType)
	assert.Equal(t, "Cancelado", got.Agent)
	assert.Len(t, got.Conversations, 3)
	assert.Equal(t, "ok", ins.Overview)
	assert.Equal(t, "lento", ins.Weakness)
}

func TestClientGenerate_NonSuccessIsFailureWithoutRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: Endpoints{Agent: srv.URL}})
	_, err := c.Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())

	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientGenerate_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Options{Endpoints: Endpoints{Agent: url}})
	_, err := c.Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestClientGenerate_UnparseableBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Accepted"))
	}))
	defer srv.Close()

	ins, err := NewClient(Options{Endpoints: Endpoints{Agent: srv.URL}}).
		Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())

	require.NoError(t, err)
	assert.Equal(t, "Accepted", ins.Overview)
	assert.Equal(t, FormatErrorSummary, ins.ShortSummary)
}

func TestClientGenerate_Guards(t *testing.T) {
	c := NewClient(Options{})

	_, err := c.Generate(context.Background(), types.ContextAgent, "Ana", nil)
	assert.ErrorIs(t, err, ErrNoConversations)

	_, err = c.Generate(context.Background(), types.ContextDepartment, "Suporte", sampleItems())
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestClientGenerate_Mock(t *testing.T) {
	c := NewClient(Options{Mock: true})
	a, err := c.Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())
	require.NoError(t, err)
	b, _ := c.Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())

	assert.Equal(t, a, b)
	assert.Contains(t, a.Overview, "3 recent interactions")
	assert.Contains(t, a.Overview, "2.3")
}

func TestClientGenerate_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resolved))
	}))
	defer srv.Close()

	c := NewClient(Options{Endpoints: Endpoints{Agent: srv.URL}, RatePerMin: 1})
	_, err := c.Generate(context.Background(), types.ContextAgent, "Ana", sampleItems())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Generate(ctx, types.ContextAgent, "Ana", sampleItems())
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
