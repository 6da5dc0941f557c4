package types

import "time"

// CandidateStatus is the pipeline status of a candidate's application.
type CandidateStatus string

// Candidate statuses
const (
	StatusDraft               CandidateStatus = "DRAFT"
	StatusApplied             CandidateStatus = "APPLIED"
	StatusAssessmentPending   CandidateStatus = "ASSESSMENT_PENDING"
	StatusAssessmentCompleted CandidateStatus = "ASSESSMENT_COMPLETED"
	StatusShortlisted         CandidateStatus = "SHORTLISTED"
	StatusPotential           CandidateStatus = "POTENTIAL"
	StatusRejected            CandidateStatus = "REJECTED"
	StatusInterviewScheduled  CandidateStatus = "INTERVIEW_SCHEDULED"
	StatusInvitedToAssessment CandidateStatus = "INVITED_TO_ASSESSMENT"
	StatusOnHold              CandidateStatus = "ON_HOLD"
)

var knownStatuses = map[CandidateStatus]bool{
	StatusDraft: true, StatusApplied: true, StatusAssessmentPending: true,
	StatusAssessmentCompleted: true, StatusShortlisted: true, StatusPotential: true,
	StatusRejected: true, StatusInterviewScheduled: true, StatusInvitedToAssessment: true,
	StatusOnHold: true,
}

// Valid reports whether s is a known status.
func (s CandidateStatus) Valid() bool {
	return knownStatuses[s]
}

// StatusForScore derives the post-assessment status: a score at or above the cutoff applies,
// anything below is rejected.
func StatusForScore(score float64, cutoff int) CandidateStatus {
	if score >= float64(cutoff) {
		return StatusApplied
	}
	return StatusRejected
}

// EvaluationResult is the AI verdict on a finished assessment.
type EvaluationResult struct {
	Score              float64            `json:"score"`
	Suitability        float64            `json:"suitability"`
	Feedback           string             `json:"feedback"`
	OneSentenceVerdict string             `json:"one_sentence_verdict,omitempty"`
	SkillBreakdown     map[string]float64 `json:"skill_breakdown,omitempty"`
	StudySuggestions   []string           `json:"study_suggestions"`
}

// DefaultEvaluation is substituted whenever the evaluation call fails or returns
// something that cannot be parsed.
func DefaultEvaluation() EvaluationResult {
	return EvaluationResult{
		Score:              0,
		Suitability:        0,
		Feedback:           "Error evaluating",
		OneSentenceVerdict: "System processing error during verdict generation.",
		SkillBreakdown:     map[string]float64{},
		StudySuggestions:   []string{"Review job fundamentals"},
	}
}

// SubmitReason records what ended an assessment.
type SubmitReason string

// Submit reasons
const (
	SubmitManual SubmitReason = "manual"
	SubmitTimer  SubmitReason = "timer"
)

// IntegrityScore converts a tab-switch count into a 0..100 integrity score.
func IntegrityScore(tabSwitches int) int {
	score := 100 - 15*tabSwitches
	if score < 0 {
		return 0
	}
	return score
}

// SessionOutcome is the finished record of one assessment session.
type SessionOutcome struct {
	SessionID      string                     `json:"session_id"`
	CandidateName  string                     `json:"candidate_name"`
	CandidateEmail string                     `json:"candidate_email"`
	LinkedInURL    string                     `json:"linkedin_url,omitempty"`
	JobID          string                     `json:"job_id"`
	Status         CandidateStatus            `json:"status"`
	Evaluation     EvaluationResult           `json:"evaluation"`
	Answers        map[string]CandidateAnswer `json:"answers"`
	TabSwitches    int                        `json:"tab_switches"`
	IntegrityScore int                        `json:"integrity_score"`
	SubmitReason   SubmitReason               `json:"submit_reason"`
	AppliedAt      time.Time                  `json:"applied_at"`
}
