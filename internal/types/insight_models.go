// internal/types/insight_models.go
package types

import (
	"fmt"
	"strings"
)

// --------------------------------------------
// Context an insight request is scoped to
// --------------------------------------------
type ContextType string

const (
	ContextAgent      ContextType = "agent"
	ContextDepartment ContextType = "department"
	ContextReason     ContextType = "reason"
)

// ParseContextType accepts the three known context kinds, case-insensitively.
func ParseContextType(s string) (ContextType, error) {
	switch ContextType(strings.ToLower(strings.TrimSpace(s))) {
	case ContextAgent:
		return ContextAgent, nil
	case ContextDepartment:
		return ContextDepartment, nil
	case ContextReason:
		return ContextReason, nil
	}
	return "", fmt.Errorf("unknown context type %q", s)
}

// Column returns the store column the context filters on.
func (c ContextType) Column() string {
	switch c {
	case ContextDepartment:
		return ColDepartment
	case ContextReason:
		return ColClosureReason
	default:
		return ColAgent
	}
}

// RecentLimit is how many recent interactions are sent for this context.
func (c ContextType) RecentLimit() int {
	if c == ContextDepartment || c == ContextReason {
		return 40
	}
	return 20
}

// --------------------------------------------
// Request sent to the insight webhook
// --------------------------------------------
type InsightPayload struct {
	Agent         string         `json:"agent,omitempty"`
	ContextType   ContextType    `json:"context_type"`
	Conversations []Conversation `json:"conversations"`
}

type Conversation struct {
	ID         ID     `json:"id"`
	Date       string `json:"date"`
	Client     string `json:"client"`
	Reason     string `json:"reason"`
	Score      int    `json:"score"`
	Transcript string `json:"transcript"`
}

// --------------------------------------------
// Narrative result returned to the dashboard
// --------------------------------------------
type Insight struct {
	Overview              string `json:"overview"`
	ShortSummary          string `json:"short_summary"`
	Strength              string `json:"strength"`
	Weakness              string `json:"weakness"`
	ImprovementSuggestion string `json:"improvement_suggestion"`
}
