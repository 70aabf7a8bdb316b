package llm

import (
	"sync"
	"time"
)

// Budget tracks the call quota for a single interview session.
//
// A Budget is created at session creation and passed into every gateway
// call made on that session's behalf; two sessions sharing one gateway
// never see each other's usage. Exhaustion is the expected steady state
// once the per-session allowance is spent, not a fault.
type Budget struct {
	mu          sync.Mutex
	maxCalls    int
	minInterval time.Duration
	callsUsed   int
	lastCall    time.Time

	now func() time.Time // injectable for tests
}

// Usage is a snapshot of budget consumption.
type Usage struct {
	CallsUsed int `json:"calls_used"`
	Limit     int `json:"limit"`
}

// NewBudget creates a session budget. maxCalls <= 0 means no calls are
// ever allowed; minInterval <= 0 disables call spacing.
func NewBudget(maxCalls int, minInterval time.Duration) *Budget {
	return &Budget{
		maxCalls:    maxCalls,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// TryAcquire reserves one call from the budget. It returns false without
// side effects when the quota is exhausted or the minimum spacing since
// the previous call has not elapsed. On success the call is charged
// before any I/O happens, so usage can never exceed the limit.
func (b *Budget) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.callsUsed >= b.maxCalls {
		return false
	}

	now := b.now()
	if b.minInterval > 0 && !b.lastCall.IsZero() && now.Sub(b.lastCall) < b.minInterval {
		return false
	}

	b.callsUsed++
	b.lastCall = now
	return true
}

// Exhausted reports whether the quota is spent.
func (b *Budget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.callsUsed >= b.maxCalls
}

// Usage returns the current consumption snapshot.
func (b *Budget) Usage() Usage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Usage{CallsUsed: b.callsUsed, Limit: b.maxCalls}
}
