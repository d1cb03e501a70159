package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surge/internal/config"
	"surge/internal/stats"
)

func testConfig(url string, requests int64, concurrency int) config.Config {
	return config.Config{
		URL:         url,
		Method:      "GET",
		Requests:    requests,
		Concurrency: concurrency,
		Timeout:     2 * time.Second,
	}
}

func TestRunDispatchesExactlyN(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL, 10, 2), nil).Run(context.Background())

	assert.Equal(t, int64(10), atomic.LoadInt64(&hits))
	assert.Equal(t, int64(10), s.Completed)
	assert.Equal(t, int64(10), s.Success)
	assert.Zero(t, s.Fail)
	assert.Equal(t, int64(10), s.Statuses[http.StatusOK])
	assert.Equal(t, 1.0, s.SuccessRate)
	assert.Greater(t, s.RPS, 0.0)
	assert.LessOrEqual(t, s.MinLatency, s.AvgLatency)
	assert.LessOrEqual(t, s.AvgLatency, s.MaxLatency)
}

func TestRunCountsNon2xxAsCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL, 10, 5), nil).Run(context.Background())

	// A completed exchange is a success regardless of status code; the
	// status tally keeps the 503s visible.
	assert.Equal(t, int64(10), s.Success)
	assert.Zero(t, s.Fail)
	assert.Equal(t, int64(10), s.Statuses[http.StatusServiceUnavailable])
}

func TestRunRecordsTimeoutsAsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, 5, 5)
	cfg.Timeout = 50 * time.Millisecond

	s := New(cfg, nil).Run(context.Background())

	assert.Equal(t, int64(5), s.Completed)
	assert.Zero(t, s.Success)
	assert.Equal(t, int64(5), s.Fail)
	assert.Equal(t, 0.0, s.SuccessRate)
	assert.Equal(t, int64(5), s.Errors["client timeout"])
}

func TestRunCancelStopsDispatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, config.Unbounded, 4)
	r := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan stats.Summary, 1)
	go func() {
		done <- r.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return r.Collector().Completed() > 10
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case s := <-done:
		assert.Greater(t, s.Completed, int64(10))
		assert.Equal(t, s.Completed, s.Success+s.Fail)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not drain after cancellation")
	}
}

func TestRunPushesSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	updates := make(SnapshotChan, 4)
	s := New(testConfig(srv.URL, 3, 3), updates).Run(context.Background())
	require.Equal(t, int64(3), s.Completed)

	// The final update is pushed before Run returns.
	select {
	case snap := <-updates:
		assert.GreaterOrEqual(t, snap.Completed, int64(0))
		assert.LessOrEqual(t, snap.Completed, int64(3))
	default:
		t.Fatal("expected at least one snapshot")
	}
}
