// Package types provides type definitions for structured data used throughout the screeniq system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultCutoffScore is applied to jobs that do not carry their own cutoff.
const DefaultCutoffScore = 70

// JobStatus is the publication status of a job.
type JobStatus string

// Job statuses
const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
)

// Difficulty describes how hard a question (or a job's assessment) is.
type Difficulty string

// Difficulty levels
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyElite  Difficulty = "elite"
)

// Job is an open role candidates are assessed against.
type Job struct {
	ID                   string             `json:"id" yaml:"id" validate:"required"`
	Title                string             `json:"title" yaml:"title" validate:"required"`
	Company              string             `json:"company" yaml:"company" validate:"required"`
	Description          string             `json:"description" yaml:"description"`
	Department           string             `json:"department,omitempty" yaml:"department"`
	ExperienceLevel      string             `json:"experience_level,omitempty" yaml:"experience_level"`
	Skills               []string           `json:"skills" yaml:"skills" validate:"required,min=1,dive,required"`
	Status               JobStatus          `json:"status" yaml:"status" validate:"omitempty,oneof=active closed"`
	CreatedAt            time.Time          `json:"created_at" yaml:"created_at"`
	CutoffScore          int                `json:"cutoff_score" yaml:"cutoff_score" validate:"gte=0,lte=100"`
	ProctoringEnabled    bool               `json:"is_proctoring_enabled" yaml:"is_proctoring_enabled"`
	DifficultySetting    Difficulty         `json:"difficulty_setting,omitempty" yaml:"difficulty_setting" validate:"omitempty,oneof=easy medium hard elite"`
	IdealSkillProfile    map[string]float64 `json:"ideal_skill_profile,omitempty" yaml:"ideal_skill_profile"`
	MarketBenchmarkScore float64            `json:"market_benchmark_score,omitempty" yaml:"market_benchmark_score"`
	RejectionDelay       string             `json:"rejection_delay,omitempty" yaml:"rejection_delay"`
	AutoNotify           bool               `json:"auto_notify" yaml:"auto_notify"`
}

// Validate validates the Job using the validator.
func (j *Job) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// Cutoff returns the pass threshold for the job.
func (j *Job) Cutoff() int {
	if j.CutoffScore <= 0 {
		return DefaultCutoffScore
	}
	return j.CutoffScore
}

// IsOpen reports whether the job accepts new assessment sessions.
func (j *Job) IsOpen() bool {
	return j.Status == "" || j.Status == JobStatusActive
}
