package runner

import "time"

// Snapshot is a cheap copy of the live counters, pushed periodically to
// whatever progress display is attached.
type Snapshot struct {
	Completed int64
	Success   int64
	Fail      int64
	Inflight  int64
	Elapsed   time.Duration

	P90Ms float64
}

// SnapshotChan carries live updates from the runner to a display.
type SnapshotChan chan Snapshot
