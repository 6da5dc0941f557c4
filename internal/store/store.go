// Package store holds jobs and candidates in memory for the lifetime of the process.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/screeniq/internal/types"
)

// ErrNotFound is returned when a candidate or application does not exist.
var ErrNotFound = errors.New("not found")

// Store is a concurrency-safe in-memory registry of jobs and candidates.
type Store struct {
	mu         sync.RWMutex
	jobs       []types.Job
	candidates []types.Candidate
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// NewSeeded creates a store holding the demo jobs and candidate.
func NewSeeded() *Store {
	s := New()
	s.jobs = SeedJobs()
	s.candidates = SeedCandidates()
	return s
}

// Jobs returns all jobs, newest first.
func (s *Store) Jobs(_ context.Context) []types.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Job, len(s.jobs))
	copy(out, s.jobs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Job returns the job with id, or nil when it does not exist.
func (s *Store) Job(_ context.Context, id string) *types.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.jobs {
		if s.jobs[i].ID == id {
			j := s.jobs[i]
			return &j
		}
	}
	return nil
}

// AddJob validates and stores a job. Missing ids, status and creation time are filled in.
func (s *Store) AddJob(_ context.Context, job types.Job) (types.Job, error) {
	if job.ID == "" {
		job.ID = "j-" + uuid.NewString()[:8]
	}
	if job.Status == "" {
		job.Status = types.JobStatusActive
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	if err := job.Validate(); err != nil {
		return types.Job{}, fmt.Errorf("invalid job: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.jobs {
		if existing.ID == job.ID {
			return types.Job{}, fmt.Errorf("job %s already exists", job.ID)
		}
	}
	s.jobs = append(s.jobs, job)
	return job, nil
}

// Candidates returns a copy of every candidate.
func (s *Store) Candidates(_ context.Context) []types.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Candidate, len(s.candidates))
	for i, c := range s.candidates {
		out[i] = cloneCandidate(c)
	}
	return out
}

// Candidate returns the candidate with id, or nil.
func (s *Store) Candidate(_ context.Context, id string) *types.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexByID(id); i >= 0 {
		c := cloneCandidate(s.candidates[i])
		return &c
	}
	return nil
}

// MergeOutcome records a finished session. The candidate is matched by email
// (case-insensitive) and created when unknown; an existing application for the
// same job is replaced.
func (s *Store) MergeOutcome(_ context.Context, outcome types.SessionOutcome) types.Candidate {
	app := cloneApplication(types.ApplicationFromOutcome(&outcome))

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByEmail(outcome.CandidateEmail)
	if i < 0 {
		s.candidates = append(s.candidates, types.Candidate{
			ID:          "c-" + uuid.NewString()[:8],
			Name:        outcome.CandidateName,
			Email:       outcome.CandidateEmail,
			LinkedInURL: outcome.LinkedInURL,
		})
		i = len(s.candidates) - 1
	}

	c := &s.candidates[i]
	if outcome.CandidateName != "" {
		c.Name = outcome.CandidateName
	}
	if outcome.LinkedInURL != "" {
		c.LinkedInURL = outcome.LinkedInURL
	}
	if existing := c.Application(outcome.JobID); existing != nil {
		*existing = app
	} else {
		c.Applied = append(c.Applied, app)
	}
	return cloneCandidate(*c)
}

// UpdateStatus changes a candidate's status for one job and marks them notified.
func (s *Store) UpdateStatus(_ context.Context, candidateID, jobID string, status types.CandidateStatus) (*types.Application, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(candidateID)
	if i < 0 {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	app := s.candidates[i].Application(jobID)
	if app == nil {
		return nil, fmt.Errorf("application %s/%s: %w", candidateID, jobID, ErrNotFound)
	}
	app.Status = status
	app.Notified = true
	out := cloneApplication(*app)
	return &out, nil
}

// Entry is one leaderboard row.
type Entry struct {
	Rank        int               `json:"rank"`
	CandidateID string            `json:"candidate_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Application types.Application `json:"application"`
}

// Leaderboard ranks every application for jobID by score, highest first.
// Ties keep the earlier application ahead.
func (s *Store) Leaderboard(_ context.Context, jobID string) []Entry {
	s.mu.RLock()
	var entries []Entry
	for _, c := range s.candidates {
		if app := c.Application(jobID); app != nil {
			entries = append(entries, Entry{
				CandidateID: c.ID,
				Name:        c.Name,
				Email:       c.Email,
				Application: cloneApplication(*app),
			})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Application, entries[j].Application
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.AppliedAt.Before(b.AppliedAt)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func (s *Store) indexByID(id string) int {
	for i := range s.candidates {
		if s.candidates[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexByEmail(email string) int {
	email = strings.TrimSpace(email)
	for i := range s.candidates {
		if strings.EqualFold(s.candidates[i].Email, email) {
			return i
		}
	}
	return -1
}

// cloneCandidate copies c deeply enough that callers cannot reach store state.
func cloneCandidate(c types.Candidate) types.Candidate {
	applied := make([]types.Application, len(c.Applied))
	for i, app := range c.Applied {
		applied[i] = cloneApplication(app)
	}
	c.Applied = applied
	return c
}

func cloneApplication(app types.Application) types.Application {
	if app.Answers != nil {
		answers := make(map[string]types.CandidateAnswer, len(app.Answers))
		for k, v := range app.Answers {
			answers[k] = v
		}
		app.Answers = answers
	}
	if app.SkillBreakdown != nil {
		breakdown := make(map[string]float64, len(app.SkillBreakdown))
		for k, v := range app.SkillBreakdown {
			breakdown[k] = v
		}
		app.SkillBreakdown = breakdown
	}
	app.StudySuggestions = append([]string(nil), app.StudySuggestions...)
	return app
}
