package insight

import (
	"sync"
	"time"

	"support-insights-go/internal/types"
)

// Result is a generated insight together with what it was generated for.
type Result struct {
	ContextType types.ContextType `json:"context_type"`
	Value       string            `json:"value"`
	Insight     types.Insight     `json:"insight"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Ticket identifies one generation attempt on a Board.
type Ticket struct {
	subject string
	token   uint64
}

type slot struct {
	token  uint64
	result *Result
}

// Board keeps the latest insight per subject (a user or session). Starting a
// generation discards the subject's previous insight, and only the most
// recently started generation may publish its result.
type Board struct {
	mu    sync.Mutex
	next  uint64
	slots map[string]*slot
	now   func() time.Time
}

func NewBoard() *Board {
	return &Board{slots: map[string]*slot{}, now: time.Now}
}

func (b *Board) Begin(subject string) Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.slots[subject] = &slot{token: b.next}
	return Ticket{subject: subject, token: b.next}
}

// Complete publishes the insight if t is still the subject's latest
// generation. It returns the stored result and whether the insight was kept.
func (b *Board) Complete(t Ticket, ct types.ContextType, value string, ins types.Insight) (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[t.subject]
	if !ok || s.token != t.token {
		return Result{}, false
	}
	s.result = &Result{ContextType: ct, Value: value, Insight: ins, GeneratedAt: b.now()}
	return *s.result, true
}

// Fail ends a generation without a result.
func (b *Board) Fail(t Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.slots[t.subject]; ok && s.token == t.token {
		delete(b.slots, t.subject)
	}
}

// Latest returns the subject's published insight, if any.
func (b *Board) Latest(subject string) (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[subject]
	if !ok || s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Pending reports whether the subject has a generation in flight.
func (b *Board) Pending(subject string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[subject]
	return ok && s.result == nil
}
