package types

import "time"

// Candidate is a person in the recruiting pipeline along with every job they applied to.
type Candidate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	LinkedInURL string        `json:"linkedin_url,omitempty"`
	Applied     []Application `json:"applied_jobs"`
}

// Application is a candidate's record for a single job.
type Application struct {
	JobID              string                     `json:"job_id"`
	Status             CandidateStatus            `json:"status"`
	Score              float64                    `json:"score"`
	Suitability        float64                    `json:"suitability"`
	Feedback           string                     `json:"feedback,omitempty"`
	OneSentenceVerdict string                     `json:"one_sentence_verdict,omitempty"`
	Answers            map[string]CandidateAnswer `json:"answers,omitempty"`
	SkillBreakdown     map[string]float64         `json:"skill_breakdown,omitempty"`
	StudySuggestions   []string                   `json:"study_suggestions,omitempty"`
	IntegrityScore     int                        `json:"integrity_score"`
	TabSwitches        int                        `json:"tab_switches"`
	AppliedAt          time.Time                  `json:"applied_at"`
	Notified           bool                       `json:"notified"`
	InternalNotes      string                     `json:"internal_notes,omitempty"`
}

// ApplicationFromOutcome builds the application record for a finished session.
func ApplicationFromOutcome(o *SessionOutcome) Application {
	return Application{
		JobID:              o.JobID,
		Status:             o.Status,
		Score:              o.Evaluation.Score,
		Suitability:        o.Evaluation.Suitability,
		Feedback:           o.Evaluation.Feedback,
		OneSentenceVerdict: o.Evaluation.OneSentenceVerdict,
		Answers:            o.Answers,
		SkillBreakdown:     o.Evaluation.SkillBreakdown,
		StudySuggestions:   o.Evaluation.StudySuggestions,
		IntegrityScore:     o.IntegrityScore,
		TabSwitches:        o.TabSwitches,
		AppliedAt:          o.AppliedAt,
	}
}

// Application returns the candidate's record for jobID, or nil.
func (c *Candidate) Application(jobID string) *Application {
	for i := range c.Applied {
		if c.Applied[i].JobID == jobID {
			return &c.Applied[i]
		}
	}
	return nil
}
