package fetcher

import "time"

const (
	// MaxBatches caps the number of batch requests per device. This is the
	// termination guarantee: even a backend that keeps returning
	// non-advancing data cannot hold the loop open past it.
	MaxBatches = 100

	// failureSkip is how far the cursor jumps past a batch that failed
	// outright, trading completeness for guaranteed forward progress.
	failureSkip = 14 * 24 * time.Hour

	// advanceStep is added to the last record's timestamp on a successful
	// batch so the next window starts strictly after it.
	advanceStep = time.Second
)

// cursor is the per-device pointer into the remaining time range. It is
// owned by exactly one FetchHistory call and discarded at loop exit.
type cursor struct {
	start time.Time // next window start
	end   time.Time // resolved end of history
	batch int       // batches requested so far
	okay  int       // batches that returned and processed cleanly
}

func newCursor(start, end time.Time, maxDays int) *cursor {
	if maxDays > 0 {
		if capped := end.Add(-time.Duration(maxDays) * 24 * time.Hour); capped.After(start) {
			start = capped
		}
	}
	return &cursor{start: start, end: end}
}

// exhausted reports whether the loop must stop: window consumed or batch
// cap reached.
func (c *cursor) exhausted() bool {
	return !c.start.Before(c.end) || c.batch >= MaxBatches
}

// advancePast moves the window start just past the given instant. The
// start strictly increases on every call, even if the backend replays an
// earlier window.
func (c *cursor) advancePast(last time.Time) {
	next := last.Add(advanceStep)
	if !next.After(c.start) {
		next = c.start.Add(advanceStep)
	}
	c.start = next
}

// skipAhead moves the window start forward by the fixed failure skip.
func (c *cursor) skipAhead() {
	c.start = c.start.Add(failureSkip)
}
