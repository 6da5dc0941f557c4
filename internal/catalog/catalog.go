// Package catalog loads job definitions from YAML files.
package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/screeniq/internal/types"
)

// File is the on-disk catalogue layout.
type File struct {
	Jobs []types.Job `yaml:"jobs"`
}

// Load reads and validates the job catalogue at filename.
func Load(filename string) ([]types.Job, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", filename, err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", filename, err)
	}
	return jobs, nil
}

// Parse decodes a catalogue, applies defaults and validates every job.
func Parse(data []byte) ([]types.Job, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("no jobs defined")
	}

	now := time.Now()
	seen := make(map[string]bool, len(f.Jobs))
	for i := range f.Jobs {
		job := &f.Jobs[i]
		applyDefaults(job, now)
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i+1, job.ID, err)
		}
		if seen[job.ID] {
			return nil, fmt.Errorf("job %d: duplicate id %q", i+1, job.ID)
		}
		seen[job.ID] = true
	}
	return f.Jobs, nil
}

func applyDefaults(job *types.Job, now time.Time) {
	if job.Status == "" {
		job.Status = types.JobStatusActive
	}
	if job.CutoffScore == 0 {
		job.CutoffScore = types.DefaultCutoffScore
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
}
