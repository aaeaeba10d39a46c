package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	requestTime  map[string]time.Duration
	errorCount   map[string]int64
	breachCount  map[string]int64
	scanCount    int64
	lastScan     time.Time
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests       map[string]int64   `json:"requests"`
	AvgRequestMS   map[string]float64 `json:"avg_request_ms"`
	Errors         map[string]int64   `json:"errors"`
	Breaches       map[string]int64   `json:"breaches"`
	BreachScans    int64              `json:"breach_scans"`
	LastBreachScan *time.Time         `json:"last_breach_scan,omitempty"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		requestTime:  make(map[string]time.Duration),
		errorCount:   make(map[string]int64),
		breachCount:  make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestTime[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordBreachScan counts one monitor pass and the breaches it found, per type.
func (m *Metrics) RecordBreachScan(at time.Time, byType map[string]int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCount++
	m.lastScan = at
	for kind, n := range byType {
		m.breachCount[kind] += int64(n)
	}
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Requests:     map[string]int64{},
		AvgRequestMS: map[string]float64{},
		Errors:       map[string]int64{},
		Breaches:     map[string]int64{},
	}
	if m == nil {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		s.Requests[k] = v
		if v > 0 {
			s.AvgRequestMS[k] = float64(m.requestTime[k].Milliseconds()) / float64(v)
		}
	}
	for k, v := range m.errorCount {
		s.Errors[k] = v
	}
	for k, v := range m.breachCount {
		s.Breaches[k] = v
	}
	s.BreachScans = m.scanCount
	if !m.lastScan.IsZero() {
		last := m.lastScan
		s.LastBreachScan = &last
	}
	return s
}
