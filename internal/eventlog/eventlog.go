// Package eventlog records session lifecycle events in a bounded,
// append-only log.
//
// Every state transition, model call and evaluation in the interview
// engine emits an event. The log is a capability injected into the
// orchestrator; the in-memory implementation keeps the most recent
// entries in a fixed-capacity ring and drops the oldest on overflow.
// Appends are best-effort and never fail.
package eventlog

import (
	"sync"
	"time"
)

// Type classifies an event.
type Type string

const (
	TypeInfo        Type = "INFO"
	TypeLLMCall     Type = "LLM_CALL"
	TypeError       Type = "ERROR"
	TypeStateChange Type = "STATE_CHANGE"
	TypeEvaluation  Type = "EVALUATION"
)

// Event is a single log entry.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      Type              `json:"type"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

// Log is an append-only event sink.
type Log interface {
	// Append records an event. Appends never fail; on overflow the
	// oldest entry is dropped.
	Append(evt Event)

	// Events returns the retained events, oldest first.
	Events() []Event
}

// DefaultCapacity bounds the in-memory log.
const DefaultCapacity = 500

// ring is a fixed-capacity in-memory Log.
type ring struct {
	mu    sync.Mutex
	buf   []Event
	start int
	count int
}

// New creates an in-memory log retaining at most capacity entries.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ring{buf: make([]Event, capacity)}
}

func (r *ring) Append(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = evt
		r.count++
		return
	}

	// Full: overwrite the oldest slot and advance the window.
	r.buf[r.start] = evt
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Nop returns a log that discards everything.
func Nop() Log { return nopLog{} }

type nopLog struct{}

func (nopLog) Append(Event)    {}
func (nopLog) Events() []Event { return nil }
