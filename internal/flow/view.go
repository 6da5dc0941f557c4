package flow

import (
	"time"

	"github.com/jonathan/screeniq/internal/types"
)

// View is a read-only snapshot of a session for rendering. Correct answers are never included.
type View struct {
	SessionID     string                `json:"session_id"`
	JobID         string                `json:"job_id"`
	JobTitle      string                `json:"job_title"`
	State         State                 `json:"state"`
	Ready         bool                  `json:"ready"`
	Briefing      string                `json:"briefing,omitempty"`
	Camera        CameraStatus          `json:"camera"`
	ActiveTracks  int                   `json:"active_tracks"`
	QuestionIndex int                   `json:"question_index"`
	QuestionCount int                   `json:"question_count"`
	Question      *types.Question       `json:"question,omitempty"`
	Answered      int                   `json:"answered"`
	Remaining     int                   `json:"remaining_seconds"`
	TabSwitches   int                   `json:"tab_switches"`
	Outcome       *types.SessionOutcome `json:"outcome,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() View {
	briefing, ready := c.Briefing()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		SessionID:     c.id,
		JobID:         c.job.ID,
		JobTitle:      c.job.Title,
		State:         c.state,
		Ready:         ready,
		Briefing:      briefing,
		Camera:        c.cameraStatus,
		QuestionIndex: c.index,
		QuestionCount: len(c.questions),
		Answered:      len(c.answers),
		Remaining:     c.remaining,
		TabSwitches:   c.tabSwitches,
	}
	if c.stream != nil {
		v.ActiveTracks = c.stream.ActiveTracks()
	}
	if c.state == StateAssessment && !c.submitted {
		q := c.questions[c.index].Public()
		v.Question = &q
		left := int(c.opts.Duration/time.Second) - int(c.deps.Clock.Since(c.startedAt)/time.Second)
		if left < 0 {
			left = 0
		}
		v.Remaining = left
	}
	if c.outcome != nil {
		o := *c.outcome
		v.Outcome = &o
	}
	if ready && c.briefingErr != nil {
		v.Warnings = append(v.Warnings, "briefing unavailable")
	}
	if ready && c.poolErr != nil {
		v.Warnings = append(v.Warnings, "question generation failed; using standard questions")
	}
	return v
}

// ActiveQuestions returns a copy of the fixed question set, without correct answers.
func (c *Controller) ActiveQuestions() []types.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = q.Public()
	}
	return out
}

// Answers returns a copy of the answers recorded so far.
func (c *Controller) Answers() map[string]types.CandidateAnswer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]types.CandidateAnswer, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}
