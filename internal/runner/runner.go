// Package runner dispatches the configured number of HTTP requests
// across a fixed pool of workers and records every outcome.
package runner

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"surge/internal/config"
	"surge/internal/stats"

	"github.com/google/uuid"
)

type Runner struct {
	cfg       config.Config
	collector *stats.Collector
	updates   SnapshotChan
	id        string

	tickets  int64
	inflight int64
	start    time.Time
}

func New(cfg config.Config, updates SnapshotChan) *Runner {
	if updates == nil {
		// Avoid nil panics if no display is attached
		updates = make(SnapshotChan, 10)
	}
	return &Runner{
		cfg:       cfg,
		collector: stats.NewCollector(),
		updates:   updates,
		id:        uuid.New().String(),
	}
}

func (r *Runner) ID() string { return r.id }

func (r *Runner) Collector() *stats.Collector { return r.collector }

func (r *Runner) Inflight() int64 { return atomic.LoadInt64(&r.inflight) }

// newClient builds the long-lived client a single worker owns for the
// whole run. Connection reuse across requests is the point.
func newClient(cfg config.Config) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: t,
	}
}

// Run blocks until every claimed ticket has produced an outcome, then
// returns the final aggregate. Cancelling ctx stops workers from
// claiming new tickets; requests already in flight finish normally and
// are counted, so the summary of an interrupted run is still exact.
func (r *Runner) Run(ctx context.Context) stats.Summary {
	r.start = time.Now()

	tickCtx, stopTick := context.WithCancel(context.Background())
	defer stopTick()
	r.startTickLoop(tickCtx, 200*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}
	wg.Wait()

	wall := time.Since(r.start)
	r.sendUpdate()
	return r.collector.Summarize(wall)
}

// work claims tickets from the shared counter until the target is
// reached or the run is cancelled. Each ticket is claimed exactly once.
func (r *Runner) work(ctx context.Context) {
	client := newClient(r.cfg)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if atomic.AddInt64(&r.tickets, 1) > r.cfg.Requests {
			return
		}
		r.execute(client)
	}
}

func (r *Runner) execute(client *http.Client) {
	atomic.AddInt64(&r.inflight, 1)
	defer atomic.AddInt64(&r.inflight, -1)

	// The request deliberately carries no context: an interrupted run
	// lets in-flight requests drain, bounded by the client timeout.
	req, err := http.NewRequest(r.cfg.Method, r.cfg.URL, nil)
	if err != nil {
		r.collector.Record(stats.Outcome{Err: err})
		return
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)

	o := stats.Outcome{Latency: elapsed, Err: err}
	if err == nil {
		o.Success = true
		o.Status = resp.StatusCode
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	r.collector.Record(o)
}

// startTickLoop pushes snapshots for the progress display until ctx is
// cancelled.
func (r *Runner) startTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

func (r *Runner) sendUpdate() {
	s := Snapshot{
		Completed: r.collector.Completed(),
		Success:   r.collector.Success(),
		Fail:      r.collector.Fail(),
		Inflight:  atomic.LoadInt64(&r.inflight),
		Elapsed:   time.Since(r.start),
		P90Ms:     float64(r.collector.P90().Microseconds()) / 1000.0,
	}

	// Non-blocking send, the display acts as backpressure
	select {
	case r.updates <- s:
	default:
	}
}
