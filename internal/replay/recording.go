// Package replay loads and generates recorded pose frame sequences so
// the analysis pipeline can run without a live detector.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ayusman/natyam/internal/pose"
)

// recordingVersion is the only recording format version understood by
// this build.
const recordingVersion = 1

// ErrEmptyRecording is returned when a recording contains no frames.
var ErrEmptyRecording = errors.New("recording contains no frames")

// Recording is a named sequence of pose frames captured from a
// detector or generated synthetically.
type Recording struct {
	Version int          `json:"version"`
	Name    string       `json:"name"`
	Frames  []pose.Frame `json:"frames"`
}

// Parse decodes and validates a recording from JSON.
func Parse(data []byte) (*Recording, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse recording: %w", err)
	}
	if rec.Version != recordingVersion {
		return nil, fmt.Errorf("unsupported recording version %d", rec.Version)
	}
	if len(rec.Frames) == 0 {
		return nil, ErrEmptyRecording
	}
	return &rec, nil
}

// Load reads a recording from a JSON file.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return Parse(data)
}

// Save writes the recording to a JSON file.
func (r *Recording) Save(path string) error {
	r.Version = recordingVersion
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}

// DurationMs returns the time span covered by the recording.
func (r *Recording) DurationMs() int64 {
	if len(r.Frames) < 2 {
		return 0
	}
	return r.Frames[len(r.Frames)-1].TimestampMs - r.Frames[0].TimestampMs
}
