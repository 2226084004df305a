package batch

import (
	"fmt"
	"path/filepath"
	"time"
)

// RunMode selects the shape of a batch run.
type RunMode string

const (
	// ModeBulk generates Count items of a single content type.
	ModeBulk RunMode = "bulk"
	// ModeAll generates Count items of every known content type.
	ModeAll RunMode = "all"
	// ModeDaily generates one item per (day, content type) pair starting at
	// StartDate.
	ModeDaily RunMode = "daily"
)

// ExpandParams is the full input to Expand. Types is the ordered set of known
// content types; Stamp is the wall-clock run timestamp embedded in bulk
// filenames to keep repeated runs from colliding (it is the only
// non-deterministic component of an expansion).
type ExpandParams struct {
	Mode        RunMode
	Types       []string
	ContentType string
	Count       int
	Days        int
	StartDate   time.Time
	OutputDir   string
	Stamp       time.Time
}

// Expand translates run intent into a flat, ordered task list. It is a pure
// function of its params: no directories are created here (the executor owns
// that), and every produced OutputPath is unique within the run.
func Expand(p ExpandParams) ([]GenerationTask, error) {
	if len(p.Types) == 0 {
		return nil, configErrorf("no content types configured")
	}

	switch p.Mode {
	case ModeBulk:
		if !containsType(p.Types, p.ContentType) {
			return nil, configErrorf("unknown content type %q (known: %v)", p.ContentType, p.Types)
		}
		if p.Count <= 0 {
			return nil, configErrorf("count must be positive, got %d", p.Count)
		}
		return expandBulk(p, []string{p.ContentType}), nil
	case ModeAll:
		if p.Count <= 0 {
			return nil, configErrorf("count must be positive, got %d", p.Count)
		}
		return expandBulk(p, p.Types), nil
	case ModeDaily:
		if p.Days <= 0 {
			return nil, configErrorf("days must be positive, got %d", p.Days)
		}
		return expandDaily(p), nil
	default:
		return nil, configErrorf("unknown run mode %q", p.Mode)
	}
}

func expandBulk(p ExpandParams, types []string) []GenerationTask {
	stamp := p.Stamp.Format("20060102-150405")
	tasks := make([]GenerationTask, 0, len(types)*p.Count)
	for _, contentType := range types {
		for i := 0; i < p.Count; i++ {
			filename := fmt.Sprintf("%s-%s-%03d.mp4", contentType, stamp, i+1)
			tasks = append(tasks, GenerationTask{
				ID:            fmt.Sprintf("%s-%03d", contentType, i+1),
				ContentType:   contentType,
				OutputPath:    filepath.Join(p.OutputDir, contentType, filename),
				SequenceIndex: i,
			})
		}
	}
	return tasks
}

func expandDaily(p ExpandParams) []GenerationTask {
	tasks := make([]GenerationTask, 0, p.Days*len(p.Types))
	for day := 0; day < p.Days; day++ {
		date := p.StartDate.AddDate(0, 0, day)
		label := date.Format("2006-01-02")
		for i, contentType := range p.Types {
			filename := fmt.Sprintf("%s-%s.mp4", label, contentType)
			tasks = append(tasks, GenerationTask{
				ID:            fmt.Sprintf("%s-%s", label, contentType),
				ContentType:   contentType,
				OutputPath:    filepath.Join(p.OutputDir, label, filename),
				SequenceIndex: i,
				DayLabel:      label,
			})
		}
	}
	return tasks
}

func containsType(types []string, name string) bool {
	for _, t := range types {
		if t == name {
			return true
		}
	}
	return false
}
