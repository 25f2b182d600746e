package domain

import "time"

// CycleStats holds counters of a single ingestion cycle
type CycleStats struct {
	ID               int64
	StartedAt        time.Time
	FinishedAt       time.Time
	Fetched          int
	Processed        int
	SkippedDuplicate int
	SkippedRelevance int
	Errors           int
}

// Duration returns how long the cycle took
func (s CycleStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
