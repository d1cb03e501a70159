// Package stats aggregates per-request outcomes into run statistics.
package stats

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is the result of one completed HTTP request. Success means the
// exchange completed at the transport level, regardless of status code.
type Outcome struct {
	Success bool
	Status  int
	Latency time.Duration
	Err     error
}

// Collector is the shared aggregation point for worker outcomes. All
// methods are safe for concurrent use.
type Collector struct {
	completed int64
	success   int64
	fail      int64

	latency *SafeHistogram

	mu       sync.Mutex
	min      time.Duration
	max      time.Duration
	sum      time.Duration
	statuses map[int]int64
	errors   map[string]int64
}

func NewCollector() *Collector {
	return &Collector{
		latency:  NewSafeHistogram(),
		statuses: make(map[int]int64),
		errors:   make(map[string]int64),
	}
}

// Record counts one outcome. Latency aggregates only cover successful
// requests; a failed request has no meaningful service latency.
func (c *Collector) Record(o Outcome) {
	atomic.AddInt64(&c.completed, 1)
	if o.Success {
		atomic.AddInt64(&c.success, 1)
		c.latency.Record(o.Latency)
	} else {
		atomic.AddInt64(&c.fail, 1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if o.Success {
		if c.min == 0 || o.Latency < c.min {
			c.min = o.Latency
		}
		if o.Latency > c.max {
			c.max = o.Latency
		}
		c.sum += o.Latency
	}
	if o.Status != 0 {
		c.statuses[o.Status]++
	}
	if o.Err != nil {
		c.errors[normalizeError(o.Err)]++
	}
}

func (c *Collector) Completed() int64 { return atomic.LoadInt64(&c.completed) }
func (c *Collector) Success() int64   { return atomic.LoadInt64(&c.success) }
func (c *Collector) Fail() int64      { return atomic.LoadInt64(&c.fail) }

// P90 is exposed for live display while the run is in flight.
func (c *Collector) P90() time.Duration {
	return c.latency.Quantile(90)
}

// normalizeError folds the many spellings of a client timeout into one
// bucket so the failure summary stays readable.
func normalizeError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "Client.Timeout") || strings.Contains(msg, "deadline exceeded") {
		return "client timeout"
	}
	return msg
}

// Summary is the immutable aggregate of a finished run.
type Summary struct {
	Completed   int64
	Success     int64
	Fail        int64
	SuccessRate float64 // 0..1

	MinLatency time.Duration
	AvgLatency time.Duration
	MaxLatency time.Duration
	P50        time.Duration
	P90        time.Duration
	P95        time.Duration
	P99        time.Duration

	Duration time.Duration
	RPS      float64
	// Users estimates effective concurrent load as RPS x average
	// latency (Little's Law).
	Users float64

	Statuses map[int]int64
	Errors   map[string]int64
}

// Summarize computes the final aggregate for a run that took wall time.
// Call it only after all workers have finished recording.
func (c *Collector) Summarize(wall time.Duration) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{
		Completed:  atomic.LoadInt64(&c.completed),
		Success:    atomic.LoadInt64(&c.success),
		Fail:       atomic.LoadInt64(&c.fail),
		MinLatency: c.min,
		MaxLatency: c.max,
		P50:        c.latency.Quantile(50),
		P90:        c.latency.Quantile(90),
		P95:        c.latency.Quantile(95),
		P99:        c.latency.Quantile(99),
		Duration:   wall,
		Statuses:   make(map[int]int64, len(c.statuses)),
		Errors:     make(map[string]int64, len(c.errors)),
	}
	for k, v := range c.statuses {
		s.Statuses[k] = v
	}
	for k, v := range c.errors {
		s.Errors[k] = v
	}

	if s.Success > 0 {
		s.AvgLatency = c.sum / time.Duration(s.Success)
	}
	if s.Completed > 0 {
		s.SuccessRate = float64(s.Success) / float64(s.Completed)
	}
	if wall > 0 {
		s.RPS = float64(s.Completed) / wall.Seconds()
	}
	s.Users = s.RPS * s.AvgLatency.Seconds()
	return s
}
