package insight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"support-insights-go/internal/types"
)

const resolved = `{"insight_geral":"Atendimento cordial","insight_resumido_direto":"Bom","ponto_forte":"Empatia","ponto_fraco":"Demora","sugestao_melhoria":"Responder mais rápido"}`

func TestParseResponse_AllWrapperShapesAgree(t *testing.T) {
	want := types.Insight{
		Overview:              "Atendimento cordial",
		ShortSummary:          "Bom",
		Strength:              "Empatia",
		Weakness:              "Demora",
		ImprovementSuggestion: "Responder mais rápido",
	}
	shapes := map[string]string{
		"bare object":     resolved,
		"array wrapped":   "[" + resolved + "]",
		"output string":   `{"output":` + quote(resolved) + `}`,
		"output object":   `{"output":` + resolved + `}`,
		"array of output": `[{"output":` + quote(resolved) + `}]`,
	}
	for name, body := range shapes {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ParseResponse(body))
		})
	}
}

func TestParseResponse_NotJSON(t *testing.T) {
	got := ParseResponse("Workflow was started")
	assert.Equal(t, types.Insight{Overview: "Workflow was started", ShortSummary: FormatErrorSummary}, got)
}

func TestParseResponse_Defaults(t *testing.T) {
	got := ParseResponse(`{"ponto_forte":"Empatia"}`)
	assert.Equal(t, DefaultOverview, got.Overview)
	assert.Equal(t, "Empatia", got.Strength)
	assert.Empty(t, got.ShortSummary)
	assert.Empty(t, got.Weakness)
	assert.Empty(t, got.ImprovementSuggestion)
}

func TestParseResponse_LegacyOverviewKey(t *testing.T) {
	assert.Equal(t, "legacy", ParseResponse(`{"insight":"legacy"}`).Overview)
	assert.Equal(t, "legacy", ParseResponse(`{"insight_geral":"","insight":"legacy"}`).Overview)
}

func TestParseResponse_OutputStringNotJSONKeepsOuterObject(t *testing.T) {
	got := ParseResponse(`{"output":"plain text","insight_geral":"outer"}`)
	assert.Equal(t, "outer", got.Overview)
}

func TestParseResponse_NonStringValues(t *testing.T) {
	got := ParseResponse(`{"insight_geral":42,"ponto_forte":["a","b"]}`)
	assert.Equal(t, "42", got.Overview)
	assert.Equal(t, `["a","b"]`, got.Strength)
}

func TestParseResponse_EmptyArrayAndScalars(t *testing.T) {
	assert.Equal(t, DefaultOverview, ParseResponse(`[]`).Overview)
	assert.Equal(t, DefaultOverview, ParseResponse(`"just a string"`).Overview)
	assert.Equal(t, FormatErrorSummary, ParseResponse(`null`).ShortSummary)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
