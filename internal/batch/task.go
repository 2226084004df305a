package batch

import "time"

// GenerationTask is one unit of work: produce one piece of content of a given
// type at a given output location. Tasks are immutable once expanded and are
// consumed exactly once by an executor.
type GenerationTask struct {
	ID            string
	ContentType   string
	OutputPath    string
	SequenceIndex int
	// DayLabel carries the date label for daily-mode tasks; empty in bulk mode.
	DayLabel string
}

// GenerationResult is the terminal record of one task attempt. Error is
// non-empty exactly when Success is false; FileSize is set only on success.
type GenerationResult struct {
	TaskID      string
	ContentType string
	OutputPath  string
	Success     bool
	Error       string
	Duration    time.Duration
	FileSize    int64
	// Metadata carries whatever the underlying generator attached
	// (captions, hashtags, ...). Opaque to the scheduler.
	Metadata map[string]any
}

// RunManifest summarizes one completed batch run. Results are kept in task
// order, so identical inputs produce identical manifests regardless of which
// worker finished first.
type RunManifest struct {
	RunID          string
	GeneratedAt    time.Time
	Total          int
	Successful     int
	Failed         int
	TotalSizeBytes int64
	Results        []GenerationResult
}
