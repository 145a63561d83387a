package observability

import (
	"sort"
	"sync"
	"time"
)

// Event kinds recorded by the bot.
const (
	KindCommand     = "command"
	KindInteraction = "interaction"
	KindMessage     = "message"
	KindHTTP        = "http"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu         sync.Mutex
	eventCount map[string]int64
	errorCount map[string]int64
	durations  map[string]time.Duration
}

// Counter is one entry of a metrics snapshot.
type Counter struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`

	// TotalMillis is the summed handling time; events only.
	TotalMillis float64 `json:"total_ms,omitempty"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Events []Counter `json:"events"`
	Errors []Counter `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		eventCount: make(map[string]int64),
		errorCount: make(map[string]int64),
		durations:  make(map[string]time.Duration),
	}
}

// RecordEvent increments counters for a handled event.
func (m *Metrics) RecordEvent(kind, name string, duration time.Duration) {
	if m == nil {
		return
	}
	key := kind + "|" + name
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[key]++
	m.durations[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(kind, name, code string) {
	if m == nil {
		return
	}
	key := kind + "|" + name + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// EventCount returns the number of recorded events for kind and name.
func (m *Metrics) EventCount(kind, name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventCount[kind+"|"+name]
}

// Snapshot copies the counters sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Events: sortedCounters(m.eventCount, m.durations),
		Errors: sortedCounters(m.errorCount, nil),
	}
}

func sortedCounters(src map[string]int64, durations map[string]time.Duration) []Counter {
	out := make([]Counter, 0, len(src))
	for key, count := range src {
		c := Counter{Key: key, Count: count}
		if d, ok := durations[key]; ok {
			c.TotalMillis = float64(d) / float64(time.Millisecond)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
