// Package calendar turns a run manifest into a posting schedule. It reads
// manifest.json the same way any other downstream tool would, so it only
// depends on the documented JSON shape, not on the batch package internals.
package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultPostTimes are the daily posting slots, in order. When per-day
// capacity exceeds the slot count the times cycle.
var DefaultPostTimes = []string{"09:00", "12:30", "17:00", "20:00"}

// Manifest is the downstream view of manifest.json.
type Manifest struct {
	GeneratedAt string  `json:"generated_at"`
	RunID       string  `json:"run_id"`
	TotalVideos int     `json:"total_videos"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	Videos      []Video `json:"videos"`
}

type Video struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Filename string         `json:"filename"`
	Success  bool           `json:"success"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Options controls how videos are spread over days.
type Options struct {
	StartDate time.Time
	PerDay    int
	PostTimes []string
}

type Entry struct {
	Date        string         `json:"date"`
	Time        string         `json:"time"`
	VideoID     string         `json:"video_id"`
	ContentType string         `json:"content_type"`
	Filename    string         `json:"filename"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Schedule struct {
	GeneratedAt string  `json:"generated_at"`
	SourceRunID string  `json:"source_run_id"`
	Entries     []Entry `json:"entries"`
}

// Load reads a manifest file written by a batch run.
func Load(path string) (Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(payload, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

// Build distributes the manifest's successful videos over consecutive days,
// PerDay at a time, in manifest order. Failed items never get a slot.
func Build(m Manifest, opts Options) (Schedule, error) {
	if opts.PerDay <= 0 {
		return Schedule{}, fmt.Errorf("per-day capacity must be positive, got %d", opts.PerDay)
	}
	times := opts.PostTimes
	if len(times) == 0 {
		times = DefaultPostTimes
	}

	schedule := Schedule{
		GeneratedAt: time.Now().Format(time.RFC3339),
		SourceRunID: m.RunID,
	}
	slot := 0
	for _, video := range m.Videos {
		if !video.Success {
			continue
		}
		day := slot / opts.PerDay
		slotInDay := slot % opts.PerDay
		date := opts.StartDate.AddDate(0, 0, day)
		schedule.Entries = append(schedule.Entries, Entry{
			Date:        date.Format("2006-01-02"),
			Time:        times[slotInDay%len(times)],
			VideoID:     video.ID,
			ContentType: video.Type,
			Filename:    video.Filename,
			Metadata:    video.Metadata,
		})
		slot++
	}
	return schedule, nil
}

// Write persists the schedule as JSON.
func Write(path string, s Schedule) error {
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return nil
}
