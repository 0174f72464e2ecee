package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// RawRecord is one row of the atendimento table as returned by the store,
// keyed by column name. Any value may be nil, missing or of an unexpected type.
type RawRecord map[string]any

// Store column names of the atendimento table.
const (
	ColID              = "id"
	ColDate            = "data"
	ColAgent           = "atendente"
	ColPhone           = "telefone"
	ColTicket          = "ticket"
	ColReason          = "motivo"
	ColScore           = "nota"
	ColDuration        = "tempo_medio_atendimento"
	ColLeadScoring     = "lead_scoring"
	ColChurn           = "churn"
	ColUpsell          = "upsell"
	ColDownsell        = "downsell"
	ColShortQualifier  = "qualificacao_resumida"
	ColSummary         = "resumo_atendimento"
	ColQualification   = "qualificacao"
	ColImprovements    = "melhorias"
	ColClosureReason   = "motivo_fechamento"
	ColDepartment      = "departamento"
	ColAIData          = "avaliacao_ia"
	ColConversationLog = "historico_conversa"
)

// Columns lists every known column in table order.
var Columns = []string{
	ColID, ColDate, ColAgent, ColPhone, ColTicket, ColReason, ColScore, ColDuration,
	ColLeadScoring, ColChurn, ColUpsell, ColDownsell, ColShortQualifier, ColSummary,
	ColQualification, ColImprovements, ColClosureReason, ColDepartment, ColAIData,
	ColConversationLog,
}

// ID identifies an interaction. Stores hand out numeric ids, so an integral ID
// is encoded as a JSON number and anything else as a string.
type ID string

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Interaction is the normalized form of one customer-support contact.
type Interaction struct {
	ID               ID        `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	AgentName        string    `json:"agent_name"`
	CustomerLabel    string    `json:"customer_label"`
	Ticket           string    `json:"ticket,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Reason           string    `json:"reason"`
	ClosureReason    string    `json:"closure_reason"`
	Department       string    `json:"department"`
	Score            int       `json:"score"`
	DurationMinutes  int       `json:"duration_minutes"`
	LeadScore        float64   `json:"lead_score"`
	ChurnRisk        float64   `json:"churn_risk"`
	UpsellPotential  float64   `json:"upsell_potential"`
	DownsellRisk     float64   `json:"downsell_risk"`
	Summary          string    `json:"summary"`
	Transcript       string    `json:"transcript"`
	ImprovementNotes string    `json:"improvement_notes,omitempty"`
	Qualification    string    `json:"qualification,omitempty"`
}

// Period values accepted by FilterState.
const (
	PeriodAll   = "all"
	Period7d    = "7d"
	Period30d   = "30d"
	Period90d   = "90d"
	PeriodToday = "today"

	// All disables the agent or reason filter.
	All = "all"
)

type FilterState struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
	Period string `json:"period"`
	Search string `json:"search,omitempty"`
}

// DefaultFilters returns a filter that keeps everything.
func DefaultFilters() FilterState {
	return FilterState{Agent: All, Reason: All, Period: PeriodAll}
}

// ValidPeriod reports whether p is one of the accepted period values.
func ValidPeriod(p string) bool {
	switch p {
	case PeriodAll, PeriodToday, Period7d, Period30d, Period90d:
		return true
	}
	return false
}
