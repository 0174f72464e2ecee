package insight

import (
	"encoding/json"
	"strconv"
	"strings"

	"support-insights-go/internal/types"
)

const (
	// DefaultOverview stands in when the response carries no overview text.
	DefaultOverview = "Analysis generated successfully."
	// FormatErrorSummary marks an insight built from an unparseable response.
	FormatErrorSummary = "Could not process the response format."
)

// Response keys as produced by the analysis workflow.
const (
	keyOverview      = "insight_geral"
	keyOverviewAlt   = "insight"
	keyShortSummary  = "insight_resumido_direto"
	keyStrength      = "ponto_forte"
	keyWeakness      = "ponto_fraco"
	keyImprovement   = "sugestao_melhoria"
	keyWrappedOutput = "output"
)

// ParseResponse unwraps the webhook body into an Insight. It never fails: text
// that is not JSON becomes the overview of a format-error insight.
//
// Accepted shapes, all resolving to the same object:
//
//	{...}
//	[{...}]
//	{"output": "{...}"}
//	{"output": {...}}
func ParseResponse(text string) types.Insight {
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		return types.Insight{Overview: text, ShortSummary: FormatErrorSummary}
	}

	work := parsed
	if arr, ok := work.([]any); ok && len(arr) > 0 {
		work = arr[0]
	}

	resolved := work
	if obj, ok := work.(map[string]any); ok && truthy(obj[keyWrappedOutput]) {
		switch out := obj[keyWrappedOutput].(type) {
		case string:
			var inner any
			if err := json.Unmarshal([]byte(out), &inner); err == nil {
				resolved = inner
			}
		default:
			resolved = out
		}
	}

	m, _ := resolved.(map[string]any)
	return types.Insight{
		Overview:              firstTruthy(m, DefaultOverview, keyOverview, keyOverviewAlt),
		ShortSummary:          firstTruthy(m, "", keyShortSummary),
		Strength:              firstTruthy(m, "", keyStrength),
		Weakness:              firstTruthy(m, "", keyWeakness),
		ImprovementSuggestion: firstTruthy(m, "", keyImprovement),
	}
}

func firstTruthy(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; truthy(v) {
			return stringify(v)
		}
	}
	return def
}

// truthy treats empty strings, zero, false and null as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
