// Package transcript turns a stored conversation history into speaker-tagged
// messages. Histories arrive either as a JSON array of chat messages in one of
// several shapes, or as plain "Atendente: ..." / "Cliente: ..." lines.
package transcript

import (
	"encoding/json"
	"regexp"
	"strings"
)

type Role string

const (
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

type Message struct {
	Index   int    `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

var (
	contentKeys = []string{"body", "message", "content", "text"}
	agentRoles  = map[string]bool{"agent": true, "assistant": true, "system": true, "atendente": true}
	speakerTag  = regexp.MustCompile(`(?i)^(atendente|cliente):`)
)

// Parse splits a transcript into messages. It never fails; unrecognised
// input degrades to one customer message per line.
func Parse(text string) []Message {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "{}" || trimmed == "null" {
		return []Message{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return parseLines(text)
	}
	// a plain-text history stored as a JSON string
	if inner, ok := parsed.(string); ok {
		return Parse(inner)
	}
	msgs := []Message{}
	if arr, ok := parsed.([]any); ok {
		for i, raw := range arr {
			msgs = append(msgs, fromJSON(i, raw))
		}
	}
	if len(msgs) == 0 && !strings.HasPrefix(trimmed, "[") {
		return parseLines(text)
	}
	return msgs
}

func fromJSON(i int, raw any) Message {
	m, _ := raw.(map[string]any)
	return Message{Index: i, Role: roleOf(m), Content: contentOf(m, raw)}
}

func contentOf(m map[string]any, raw any) string {
	for _, k := range contentKeys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(b)
}

// roleOf checks fromMe, then from, then role; the first one present decides.
// A null fromMe is present and means customer.
func roleOf(m map[string]any) Role {
	if v, ok := m["fromMe"]; ok {
		return agentIf(truthy(v))
	}
	if v, ok := m["from"]; ok && truthy(v) {
		from := strings.ToLower(toString(v))
		return agentIf(from == "me" || from == "true" ||
			strings.Contains(from, "agent") ||
			strings.Contains(from, "atendente") ||
			strings.Contains(from, "admin"))
	}
	if v, ok := m["role"].(string); ok && v != "" {
		return agentIf(agentRoles[strings.ToLower(v)])
	}
	return RoleCustomer
}

func parseLines(text string) []Message {
	lines := strings.Split(text, "\n")
	msgs := make([]Message, 0, len(lines))
	for i, line := range lines {
		role := RoleCustomer
		if strings.HasPrefix(strings.ToLower(line), "atendente:") {
			role = RoleAgent
		}
		msgs = append(msgs, Message{
			Index:   i,
			Role:    role,
			Content: strings.TrimSpace(speakerTag.ReplaceAllString(line, "")),
		})
	}
	return msgs
}

func agentIf(b bool) Role {
	if b {
		return RoleAgent
	}
	return RoleCustomer
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	}
	return true
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
