// Package adapter maps raw atendimento rows onto types.Interaction.
package adapter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"support-insights-go/internal/normalize"
	"support-insights-go/internal/types"
)

// Placeholders used when a display field has no source value.
const (
	UnknownAgent    = "Unknown"
	UnknownCustomer = "Unknown"
	UnknownClosure  = "Unknown"
	GeneralReason   = "General"
	GeneralDept     = "General"
)

// Side-payload keys consulted for each derived field, in priority order.
var (
	leadScoreKeys = []string{"lead_scoring", "score", "pontuacao"}
	churnKeys     = []string{"churn", "churn_risk", "risco_cancelamento", "cancelamento", "risco_churn", "risco"}
	upsellKeys    = []string{"upsell", "upsell_potential", "potencial_venda", "venda", "potencial_upsell", "oportunidade_venda"}
	downsellKeys  = []string{"downsell", "downsell_risk", "risco_queda", "risco_downsell", "queda", "diminuicao_contrato"}
	summaryKeys   = []string{"resumo", "summary"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Adapt converts one raw record. It never fails: every field has a fallback.
func Adapt(raw types.RawRecord) types.Interaction {
	return AdaptAt(raw, time.Now())
}

// AdaptAt is Adapt with an explicit fallback time for records without a date.
func AdaptAt(raw types.RawRecord, now time.Time) types.Interaction {
	ai := sidePayload(raw[types.ColAIData])

	phone := text(raw[types.ColPhone])
	ticket := text(raw[types.ColTicket])

	return types.Interaction{
		ID:              types.ID(text(raw[types.ColID])),
		Timestamp:       timestamp(raw[types.ColDate], now),
		AgentName:       orDefault(text(raw[types.ColAgent]), UnknownAgent),
		CustomerLabel:   firstText(UnknownCustomer, phone, ticket),
		Ticket:          ticket,
		Phone:           phone,
		Reason:          orDefault(text(raw[types.ColReason]), GeneralReason),
		ClosureReason:   orDefault(text(raw[types.ColClosureReason]), UnknownClosure),
		Department:      orDefault(text(raw[types.ColDepartment]), GeneralDept),
		Score:           score(raw[types.ColScore]),
		DurationMinutes: normalize.IntervalToMinutes(raw[types.ColDuration]),
		LeadScore:       math.Max(0, normalize.ScoringNumber(pick(raw[types.ColLeadScoring], ai, leadScoreKeys))),
		ChurnRisk:       percent(pick(raw[types.ColChurn], ai, churnKeys)),
		UpsellPotential: percent(pick(raw[types.ColUpsell], ai, upsellKeys)),
		DownsellRisk:    percent(pick(raw[types.ColDownsell], ai, downsellKeys)),
		Summary: firstText("",
			text(raw[types.ColSummary]),
			text(raw[types.ColShortQualifier]),
			firstKeyText(ai, summaryKeys),
		),
		Transcript:       transcript(raw[types.ColConversationLog]),
		ImprovementNotes: firstText("", text(raw[types.ColImprovements]), text(ai["melhorias"])),
		Qualification:    firstText("", text(raw[types.ColQualification]), text(ai["qualificacao"])),
	}
}

// AdaptAll adapts a slice, preserving order.
func AdaptAll(raws []types.RawRecord) []types.Interaction {
	out := make([]types.Interaction, 0, len(raws))
	now := time.Now()
	for _, r := range raws {
		out = append(out, AdaptAt(r, now))
	}
	return out
}

// pick returns the direct value when present, otherwise the first side-payload
// key that is present. Presence is decided before any normalization, so a
// malformed early key wins over a well-formed later one.
func pick(direct any, ai map[string]any, keys []string) any {
	if direct != nil {
		return direct
	}
	for _, k := range keys {
		if v, ok := ai[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// sidePayload accepts the avaliacao_ia column either decoded or as JSON text.
func sidePayload(v any) map[string]any {
	switch p := v.(type) {
	case map[string]any:
		return p
	case types.RawRecord:
		return p
	case string:
		return decodeObject([]byte(p))
	case []byte:
		return decodeObject(p)
	}
	return map[string]any{}
}

func decodeObject(b []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

// transcript re-serializes the conversation history as indented JSON.
func transcript(v any) string {
	switch h := v.(type) {
	case nil:
		v = map[string]any{}
	case string:
		if h == "" {
			v = map[string]any{}
			break
		}
		var decoded any
		if err := json.Unmarshal([]byte(h), &decoded); err == nil {
			v = decoded
		}
	case []byte:
		var decoded any
		if err := json.Unmarshal(h, &decoded); err == nil {
			v = decoded
		} else {
			v = string(h)
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func timestamp(v any, now time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
	}
	return now
}

// percent floors negative values at 0; values above 100 pass through.
func percent(v any) float64 {
	return math.Max(0, normalize.PercentOf(v))
}

func score(v any) int {
	n := normalize.ScoringNumber(v)
	if n < 0 {
		return 0
	}
	return int(n)
}

// text renders scalar values as display strings; nil and blanks become "".
func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case map[string]any, []any:
		b, _ := json.Marshal(s)
		return string(b)
	}
	return fmt.Sprint(v)
}

func firstKeyText(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s := text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstText(def string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return def
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
