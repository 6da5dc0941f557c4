//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateIntake_Validate(t *testing.T) {
	tests := []struct {
		name    string
		intake  CandidateIntake
		wantErr bool
	}{
		{
			name: "valid intake",
			intake: CandidateIntake{
				Name:      "Alex Rivera",
				Email:     "alex@example.com",
				ResumeRef: "resumes/alex.pdf",
			},
		},
		{
			name: "valid intake with linkedin",
			intake: CandidateIntake{
				Name:        "Alex Rivera",
				Email:       "alex@example.com",
				LinkedInURL: "https://linkedin.com/in/alexrivera",
				ResumeRef:   "resumes/alex.pdf",
			},
		},
		{
			name:    "missing name",
			intake:  CandidateIntake{Email: "alex@example.com", ResumeRef: "r.pdf"},
			wantErr: true,
		},
		{
			name:    "whitespace name",
			intake:  CandidateIntake{Name: "   ", Email: "alex@example.com", ResumeRef: "r.pdf"},
			wantErr: true,
		},
		{
			name:    "invalid email",
			intake:  CandidateIntake{Name: "Alex", Email: "not-an-email", ResumeRef: "r.pdf"},
			wantErr: true,
		},
		{
			name:    "missing resume",
			intake:  CandidateIntake{Name: "Alex", Email: "alex@example.com"},
			wantErr: true,
		},
		{
			name: "invalid linkedin url",
			intake: CandidateIntake{
				Name: "Alex", Email: "alex@example.com", ResumeRef: "r.pdf", LinkedInURL: "linkedin",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.intake.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJob_ValidateAndCutoff(t *testing.T) {
	job := Job{
		ID:          "j1",
		Title:       "Senior Frontend Engineer",
		Company:     "Google",
		Skills:      []string{"React", "TypeScript"},
		Status:      JobStatusActive,
		CutoffScore: 75,
	}
	require.NoError(t, job.Validate())
	assert.Equal(t, 75, job.Cutoff())
	assert.True(t, job.IsOpen())

	job.CutoffScore = 0
	assert.Equal(t, DefaultCutoffScore, job.Cutoff())

	job.Status = JobStatusClosed
	assert.False(t, job.IsOpen())

	job.Skills = nil
	assert.Error(t, job.Validate())
}

func TestStatusForScore(t *testing.T) {
	assert.Equal(t, StatusApplied, StatusForScore(75, 75))
	assert.Equal(t, StatusApplied, StatusForScore(92, 75))
	assert.Equal(t, StatusRejected, StatusForScore(74.9, 75))
	assert.Equal(t, StatusRejected, StatusForScore(0, 1))
}

func TestIntegrityScore(t *testing.T) {
	tests := []struct {
		switches int
		want     int
	}{
		{0, 100},
		{1, 85},
		{3, 55},
		{6, 10},
		{7, 0},
		{20, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntegrityScore(tt.switches), "switches=%d", tt.switches)
	}
}

func TestDefaultEvaluation(t *testing.T) {
	def := DefaultEvaluation()
	assert.Zero(t, def.Score)
	assert.Zero(t, def.Suitability)
	assert.Equal(t, "Error evaluating", def.Feedback)
	assert.NotEmpty(t, def.StudySuggestions)

	// Each call returns an independent value.
	def.StudySuggestions[0] = "changed"
	assert.Equal(t, "Review job fundamentals", DefaultEvaluation().StudySuggestions[0])
}

func TestQuestion_PublicAndIsCorrect(t *testing.T) {
	q := Question{ID: "q1", Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"}
	assert.True(t, q.IsCorrect("4"))
	assert.False(t, q.IsCorrect("3"))

	pub := q.Public()
	assert.Empty(t, pub.CorrectAnswer)
	assert.Equal(t, "4", q.CorrectAnswer)

	pub.Options[0] = "x"
	assert.Equal(t, "3", q.Options[0])

	assert.False(t, (&Question{}).IsCorrect(""))
}

func TestApplicationFromOutcome(t *testing.T) {
	now := time.Now()
	o := &SessionOutcome{
		JobID:  "j1",
		Status: StatusApplied,
		Evaluation: EvaluationResult{
			Score: 80, Suitability: 70, Feedback: "solid", OneSentenceVerdict: "Hire.",
		},
		Answers:        map[string]CandidateAnswer{"q1": {Value: "a", TimeTaken: 3}},
		TabSwitches:    2,
		IntegrityScore: 70,
		AppliedAt:      now,
	}
	app := ApplicationFromOutcome(o)
	assert.Equal(t, "j1", app.JobID)
	assert.Equal(t, 80.0, app.Score)
	assert.Equal(t, "Hire.", app.OneSentenceVerdict)
	assert.Equal(t, 2, app.TabSwitches)
	assert.Equal(t, 70, app.IntegrityScore)
	assert.Len(t, app.Answers, 1)

	c := Candidate{Applied: []Application{app}}
	require.NotNil(t, c.Application("j1"))
	assert.Nil(t, c.Application("j2"))
}

func TestConfidenceLevel_Valid(t *testing.T) {
	assert.True(t, ConfidenceLevel("").Valid())
	assert.True(t, ConfidenceCertain.Valid())
	assert.False(t, ConfidenceLevel("very").Valid())
	assert.True(t, StatusOnHold.Valid())
	assert.False(t, CandidateStatus("HIRED").Valid())
}
