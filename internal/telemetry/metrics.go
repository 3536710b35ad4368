// Package telemetry collects in-memory query metrics: which search strategy
// answered, how long it took and which queries came back empty. Nothing is
// reported externally; the stats command reads a snapshot.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket is a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent is one answered search query.
type QueryEvent struct {
	Query       string
	Strategy    string
	ResultCount int
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult reports whether the query returned nothing.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// TermCount is a query term and its frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is an immutable view of collected metrics.
type Snapshot struct {
	StrategyCounts      map[string]int64        `json:"strategy_counts"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	TotalQueries        int64                   `json:"total_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	Since               time.Time               `json:"since"`
}

// ZeroResultPercentage returns the share of queries that found nothing.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// Defaults for collector capacities.
const (
	DefaultTermsCapacity       = 100
	DefaultZeroResultsCapacity = 50
)

// Metrics collects query events. Safe for concurrent use.
type Metrics struct {
	mu             sync.RWMutex
	strategyCounts map[string]int64
	latencyCounts  map[LatencyBucket]int64
	totalQueries   int64
	zeroResults    int64
	since          time.Time

	// LRU keeps the term table bounded; a term that falls out of the
	// window simply restarts its count.
	terms           *lru.Cache[string, int64]
	zeroResultQueue *ringBuffer[string]
}

// NewMetrics creates a collector with default capacities.
func NewMetrics() *Metrics {
	terms, _ := lru.New[string, int64](DefaultTermsCapacity)
	return &Metrics{
		strategyCounts:  make(map[string]int64),
		latencyCounts:   make(map[LatencyBucket]int64),
		since:           time.Now().UTC(),
		terms:           terms,
		zeroResultQueue: newRingBuffer[string](DefaultZeroResultsCapacity),
	}
}

// Record adds one query event.
func (m *Metrics) Record(event QueryEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	m.strategyCounts[event.Strategy]++
	m.latencyCounts[LatencyToBucket(event.Latency)]++

	for _, term := range ExtractTerms(event.Query) {
		count, _ := m.terms.Get(term)
		m.terms.Add(term, count+1)
	}

	if event.IsZeroResult() {
		m.zeroResults++
		m.zeroResultQueue.add(event.Query)
	}
}

// Snapshot returns a copy of the current state.
func (m *Metrics) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	strategies := make(map[string]int64, len(m.strategyCounts))
	for k, v := range m.strategyCounts {
		strategies[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(m.latencyCounts))
	for k, v := range m.latencyCounts {
		latencies[k] = v
	}

	terms := make([]TermCount, 0, m.terms.Len())
	for _, term := range m.terms.Keys() {
		if count, ok := m.terms.Peek(term); ok {
			terms = append(terms, TermCount{Term: term, Count: count})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})

	return &Snapshot{
		StrategyCounts:      strategies,
		LatencyDistribution: latencies,
		TopTerms:            terms,
		ZeroResultQueries:   m.zeroResultQueue.items(),
		TotalQueries:        m.totalQueries,
		ZeroResultCount:     m.zeroResults,
		Since:               m.since,
	}
}

// ExtractTerms lowercases a query and keeps words of length >= 3.
func ExtractTerms(query string) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	var terms []string
	for _, w := range words {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}
