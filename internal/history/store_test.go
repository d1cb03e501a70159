package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surge/internal/config"
	"surge/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.Save(Entry{
			ID:        fmt.Sprintf("run-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Config:    config.Config{URL: "http://localhost:8080/fast", Method: "GET"},
			Summary:   stats.Summary{Completed: int64(i + 1)},
		})
		require.NoError(t, err)
	}

	entries, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "run-2", entries[0].ID)
	assert.Equal(t, "run-0", entries[2].ID)
	assert.Equal(t, int64(3), entries[0].Summary.Completed)
	assert.Equal(t, "http://localhost:8080/fast", entries[0].Config.URL)
}

func TestListHonorsLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(Entry{
			ID:        fmt.Sprintf("run-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "run-4", entries[0].ID)
}

func TestListEmptyStore(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
