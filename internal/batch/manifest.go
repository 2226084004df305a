package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ManifestFilename is the fixed name of the run summary at the output root.
const ManifestFilename = "manifest.json"

// BuildManifest folds a completed result list into a RunManifest in a single
// pass. An empty result list yields a valid all-zero manifest.
func BuildManifest(runID string, generatedAt time.Time, results []GenerationResult) RunManifest {
	m := RunManifest{
		RunID:       runID,
		GeneratedAt: generatedAt,
		Total:       len(results),
		Results:     results,
	}
	for _, r := range results {
		if r.Success {
			m.Successful++
			m.TotalSizeBytes += r.FileSize
		} else {
			m.Failed++
		}
	}
	return m
}

type manifestFile struct {
	GeneratedAt string         `json:"generated_at"`
	RunID       string         `json:"run_id"`
	TotalVideos int            `json:"total_videos"`
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	TotalSizeMB float64        `json:"total_size_mb"`
	Videos      []manifestItem `json:"videos"`
}

type manifestItem struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Filename    string         `json:"filename"`
	FileSizeMB  float64        `json:"file_size_mb,omitempty"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	DurationSec float64        `json:"duration_seconds"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// WriteManifest serializes the manifest to path. Any failure here is a
// PersistError: losing the manifest loses the run's bookkeeping, so the
// caller treats it as fatal (unlike per-item failures).
func WriteManifest(path string, m RunManifest) error {
	doc := manifestFile{
		GeneratedAt: m.GeneratedAt.Format(time.RFC3339),
		RunID:       m.RunID,
		TotalVideos: m.Total,
		Successful:  m.Successful,
		Failed:      m.Failed,
		TotalSizeMB: bytesToMB(m.TotalSizeBytes),
		Videos:      make([]manifestItem, 0, len(m.Results)),
	}
	for _, r := range m.Results {
		item := manifestItem{
			ID:          r.TaskID,
			Type:        r.ContentType,
			Filename:    filepath.Base(r.OutputPath),
			Success:     r.Success,
			Error:       r.Error,
			DurationSec: r.Duration.Seconds(),
			Metadata:    r.Metadata,
		}
		if r.Success {
			item.FileSizeMB = bytesToMB(r.FileSize)
		}
		doc.Videos = append(doc.Videos, item)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

func bytesToMB(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
