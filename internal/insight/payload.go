// Package insight talks to the external analysis webhook: it shapes a batch of
// interactions into a request, sends it, and unwraps whatever comes back into
// a types.Insight.
package insight

import (
	"strings"
	"time"

	"support-insights-go/internal/types"
)

// BuildPayload maps interactions into the webhook request for one context.
// The context value travels in the agent field whatever the context type.
func BuildPayload(items []types.Interaction, ct types.ContextType, value string) types.InsightPayload {
	convs := make([]types.Conversation, 0, len(items))
	for _, it := range items {
		convs = append(convs, types.Conversation{
			ID:         it.ID,
			Date:       it.Timestamp.UTC().Format(time.RFC3339),
			Client:     it.CustomerLabel,
			Reason:     it.Reason,
			Score:      it.Score,
			Transcript: conversationText(it),
		})
	}
	return types.InsightPayload{
		Agent:         value,
		ContextType:   ct,
		Conversations: convs,
	}
}

// conversationText prefers the transcript, then the summary.
func conversationText(it types.Interaction) string {
	if !blankTranscript(it.Transcript) {
		return it.Transcript
	}
	return it.Summary
}

// blankTranscript reports transcripts carrying no messages, including the
// empty JSON documents the adapter emits for missing history.
func blankTranscript(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "{}", "[]", "null":
		return true
	}
	return false
}

// Endpoints holds the webhook URL for each context type.
type Endpoints struct {
	Agent      string
	Department string
	Reason     string
}

// URL picks the endpoint for ct. Unknown types fall back to the agent URL.
func (e Endpoints) URL(ct types.ContextType) string {
	switch ct {
	case types.ContextDepartment:
		return e.Department
	case types.ContextReason:
		return e.Reason
	default:
		return e.Agent
	}
}
