package insight

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-insights-go/internal/types"
)

func sampleItems() []types.Interaction {
	ts := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	return []types.Interaction{
		{ID: "1", Timestamp: ts, CustomerLabel: "Cliente A", Reason: "Cobrança", Score: 5, Transcript: `[{"body":"oi"}]`, Summary: "resumo 1"},
		{ID: "2", Timestamp: ts, CustomerLabel: "Cliente B", Reason: "Suporte", Score: 2, Transcript: "{}", Summary: "resumo 2"},
		{ID: "x-3", Timestamp: ts, CustomerLabel: "Cliente C", Reason: "Suporte", Score: 0, Transcript: ""},
	}
}

func TestBuildPayload(t *testing.T) {
	p := BuildPayload(sampleItems(), types.ContextDepartment, "Suporte")

	assert.Equal(t, "Suporte", p.Agent)
	assert.Equal(t, types.ContextDepartment, p.ContextType)
	require.Len(t, p.Conversations, 3)
	assert.Equal(t, `[{"body":"oi"}]`, p.Conversations[0].Transcript)
	assert.Equal(t, "resumo 2", p.Conversations[1].Transcript)
	assert.Equal(t, "", p.Conversations[2].Transcript)
	assert.Equal(t, "2025-06-10T12:00:00Z", p.Conversations[0].Date)
	assert.Equal(t, "Cliente A", p.Conversations[0].Client)
}

func TestBuildPayload_WireFormat(t *testing.T) {
	b, err := json.Marshal(BuildPayload(sampleItems()[:1], types.ContextAgent, "Ana"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"agent": "Ana",
		"context_type": "agent",
		"conversations": [{"id": 1, "date": "2025-06-10T12:00:00Z", "client": "Cliente A", "reason": "Cobrança", "score": 5, "transcript": "[{\"body\":\"oi\"}]"}]
	}`, string(b))
}

func TestEndpointsURL(t *testing.T) {
	e := Endpoints{Agent: "a", Department: "d", Reason: "r"}
	assert.Equal(t, "a", e.URL(types.ContextAgent))
	assert.Equal(t, "d", e.URL(types.ContextDepartment))
	assert.Equal(t, "r", e.URL(types.ContextReason))
	assert.Equal(t, "a", e.URL("other"))
}
