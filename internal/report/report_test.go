package report

import (
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surge/internal/config"
	"surge/internal/stats"
)

func sampleSummary() stats.Summary {
	return stats.Summary{
		Completed:   10,
		Success:     9,
		Fail:        1,
		SuccessRate: 0.9,
		MinLatency:  10 * time.Millisecond,
		AvgLatency:  20 * time.Millisecond,
		MaxLatency:  40 * time.Millisecond,
		P50:         18 * time.Millisecond,
		P90:         35 * time.Millisecond,
		P95:         38 * time.Millisecond,
		P99:         40 * time.Millisecond,
		Duration:    500 * time.Millisecond,
		RPS:         20,
		Users:       0.4,
		Statuses:    map[int]int64{200: 7, 503: 2},
		Errors:      map[string]int64{"client timeout": 1},
	}
}

func TestRenderContainsSummaryFields(t *testing.T) {
	cfg := config.Config{
		URL:         "http://localhost:8080/fast",
		Method:      "GET",
		Requests:    10,
		Concurrency: 2,
		Timeout:     10 * time.Second,
	}

	out := Render(cfg, sampleSummary())

	assert.Contains(t, out, "http://localhost:8080/fast")
	assert.Contains(t, out, "Concurrency    : 2 (simulated users)")
	assert.Contains(t, out, "Requested      : 10")
	assert.Contains(t, out, "Success        : 9 (90.0%)")
	assert.Contains(t, out, "Status codes   : 200:7 503:2")
	assert.Contains(t, out, "Requests/s     : 20.00")
	assert.Contains(t, out, "Avg : 20.00ms")
	assert.Contains(t, out, "Estimated concurrent users: 0.40")
	assert.Contains(t, out, "1 x client timeout")
}

func TestRenderUnboundedRun(t *testing.T) {
	cfg := config.Config{
		URL:         "http://localhost:8080/fast",
		Method:      "GET",
		Requests:    config.Unbounded,
		Concurrency: 8,
		Timeout:     10 * time.Second,
		Paranoid:    true,
	}

	out := Render(cfg, sampleSummary())
	assert.Contains(t, out, "unlimited (paranoid)")
}

func TestWriteFileCreatesTimestampedLog(t *testing.T) {
	t.Chdir(t.TempDir())

	name, err := WriteFile("summary text\n")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^stress_test_\d{8}_\d{6}\.log$`), name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "summary text\n", string(data))
}
