// Package normalize converts weakly-typed store values into numbers.
// Every function here is total: malformed input yields 0, never an error.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	truthy         = []string{"true", "sim", "s", "yes"}
	highKeywords   = []string{"alto", "crítico", "critico", "critical", "high"}
	mediumKeywords = []string{"médio", "medio", "medium"}
	lowKeywords    = []string{"baixo", "low"}
)

// Percent levels assigned to qualitative keywords.
const (
	PercentTrue   = 100
	PercentHigh   = 80
	PercentMedium = 50
	PercentLow    = 20
)

// IntervalToMinutes reads an "H:M:S" interval and returns H*60+M.
// Seconds are discarded. Any other shape returns 0.
func IntervalToMinutes(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	total := hours*60 + minutes
	if total < 0 {
		return 0
	}
	return total
}

// ScoringNumber passes numbers through and parses strings as floats.
func ScoringNumber(v any) float64 {
	if n, ok := number(v); ok {
		return finite(n)
	}
	if s, ok := v.(string); ok {
		return parseFloat(s)
	}
	return 0
}

// PercentOf maps a percent-like value onto the 0..100 scale. Rules are tried
// in order and the first match wins, so "true" is never parsed as a number.
// Numeric input is returned unclamped.
func PercentOf(v any) float64 {
	if v == nil {
		return 0
	}
	if n, ok := number(v); ok {
		return finite(n)
	}
	if b, ok := v.(bool); ok {
		if b {
			return PercentTrue
		}
		return 0
	}

	str := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	for _, t := range truthy {
		if str == t {
			return PercentTrue
		}
	}
	switch {
	case containsAny(str, highKeywords):
		return PercentHigh
	case containsAny(str, mediumKeywords):
		return PercentMedium
	case containsAny(str, lowKeywords):
		return PercentLow
	}
	return parseFloat(strings.Replace(str, "%", "", 1))
}

// number reports whether v already holds a numeric value.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// parseFloat reads the longest numeric prefix of s, the way a lenient
// float parser does ("73 pts" -> 73). No numeric prefix gives 0.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	return i
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
