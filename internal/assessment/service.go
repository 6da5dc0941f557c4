// Package assessment wraps the generative-AI calls behind an assessment session:
// briefing text, the question pool, scoring, and the recruiter-side helpers.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/screeniq/internal/llm"
	"github.com/jonathan/screeniq/internal/prompts"
	"github.com/jonathan/screeniq/internal/schemas"
	"github.com/jonathan/screeniq/internal/types"
)

const promptFile = "assessment.json"

// PoolSize is the number of questions requested from the model per generation.
const PoolSize = 10

// Service issues assessment prompts against an llm.Client.
type Service struct {
	client llm.Client
	// Attempts per call. One attempt is the default; raise it only for resilience.
	Attempts int
}

// NewService creates a Service on client.
func NewService(client llm.Client) *Service {
	return &Service{client: client, Attempts: 1}
}

// CleanText removes markdown emphasis, headings and code ticks from model output.
func CleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '`':
			return -1
		}
		return r
	}, s))
}

// OptimizeJobDescription asks for a tightened job description and a sanity check of the skill mix.
func (s *Service) OptimizeJobDescription(ctx context.Context, job *types.Job) (string, error) {
	prompt, err := prompts.Render(promptFile, "optimize-job", map[string]string{
		"Title":       job.Title,
		"Skills":      joinSkills(job.Skills),
		"Description": job.Description,
	})
	if err != nil {
		return "", err
	}
	return s.text(ctx, "optimize job description", prompt, llm.TierLite)
}

// GenerateBriefing returns the short pre-assessment briefing for job.
func (s *Service) GenerateBriefing(ctx context.Context, job *types.Job) (string, error) {
	prompt, err := prompts.Render(promptFile, "briefing", map[string]string{
		"Title":   job.Title,
		"Company": job.Company,
		"Skills":  joinSkills(job.Skills),
	})
	if err != nil {
		return "", err
	}
	return s.text(ctx, "generate briefing", prompt, llm.TierLite)
}

// GenerateQuestionPool generates multiple-choice questions for job, optionally
// cross-referenced with resume text. Items that fail the question schema are dropped
// and the rest are kept. The error is set only when no item survives or the call
// itself failed; callers are expected to pad short pools.
func (s *Service) GenerateQuestionPool(ctx context.Context, job *types.Job, resumeContext string) ([]types.Question, error) {
	contextLine := "No resume provided yet."
	if strings.TrimSpace(resumeContext) != "" {
		contextLine = "Candidate Resume Context: " + resumeContext
	}
	difficulty := string(job.DifficultySetting)
	if difficulty == "" {
		difficulty = "adaptive"
	}

	prompt, err := prompts.Render(promptFile, "question-pool", map[string]string{
		"Title":         job.Title,
		"Skills":        joinSkills(job.Skills),
		"Difficulty":    difficulty,
		"ResumeContext": contextLine,
		"Count":         fmt.Sprint(PoolSize),
	})
	if err != nil {
		return nil, err
	}

	const op = "generate question pool"
	raw, err := s.structured(ctx, op, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.QuestionPool, raw); err != nil {
		return nil, &ParseError{Operation: op, Content: raw, Cause: err}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &ParseError{Operation: op, Content: raw, Cause: err}
	}

	pool := make([]types.Question, 0, len(items))
	var firstErr error
	for i, item := range items {
		q, err := decodeQuestion(item)
		if err != nil {
			log.Printf("[assessment] dropping pool item %d: %v", i, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		pool = append(pool, q)
	}
	if len(pool) == 0 && firstErr != nil {
		return nil, &ParseError{Operation: op, Content: raw, Cause: firstErr}
	}
	return pool, nil
}

// decodeQuestion checks one pool item against the question schema. Enum fields are
// compared case-insensitively since models often capitalise them.
func decodeQuestion(item json.RawMessage) (types.Question, error) {
	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil {
		return types.Question{}, err
	}
	for _, key := range []string{"type", "difficulty"} {
		if v, ok := fields[key].(string); ok {
			fields[key] = strings.ToLower(strings.TrimSpace(v))
		}
	}
	normalized, err := json.Marshal(fields)
	if err != nil {
		return types.Question{}, err
	}
	if err := schemas.Validate(schemas.Question, string(normalized)); err != nil {
		return types.Question{}, err
	}

	var q types.Question
	if err := json.Unmarshal(normalized, &q); err != nil {
		return types.Question{}, err
	}
	q.Text = CleanText(q.Text)
	return q, nil
}

// Evaluate scores a finished assessment. It always returns a usable result: when the
// call fails or the response does not decode against the evaluation schema, the
// result is types.DefaultEvaluation() and the error reports why.
func (s *Service) Evaluate(ctx context.Context, job *types.Job, questions []types.Question, answers map[string]types.CandidateAnswer) (types.EvaluationResult, error) {
	const op = "evaluate"

	prompt, err := prompts.Render(promptFile, "evaluation", map[string]string{
		"Title":   job.Title,
		"Company": job.Company,
		"Skills":  joinSkills(job.Skills),
		"Answers": AnswerDigest(questions, answers),
	})
	if err != nil {
		return types.DefaultEvaluation(), err
	}

	raw, err := s.structured(ctx, op, prompt, llm.TierAdvanced)
	if err != nil {
		return types.DefaultEvaluation(), err
	}
	if err := schemas.Validate(schemas.Evaluation, raw); err != nil {
		return types.DefaultEvaluation(), &ParseError{Operation: op, Content: raw, Cause: err}
	}

	var result types.EvaluationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return types.DefaultEvaluation(), &ParseError{Operation: op, Content: raw, Cause: err}
	}
	result.Feedback = CleanText(result.Feedback)
	result.OneSentenceVerdict = CleanText(result.OneSentenceVerdict)
	if len(result.StudySuggestions) == 0 {
		result.StudySuggestions = types.DefaultEvaluation().StudySuggestions
	}
	return result, nil
}

// GenerateInterviewScript drafts five follow-up interview questions aimed at the gaps in feedback.
func (s *Service) GenerateInterviewScript(ctx context.Context, job *types.Job, feedback string, skills []string) (string, error) {
	if len(skills) == 0 {
		skills = job.Skills
	}
	prompt, err := prompts.Render(promptFile, "interview-script", map[string]string{
		"Title":    job.Title,
		"Company":  job.Company,
		"Feedback": feedback,
		"Skills":   joinSkills(skills),
	})
	if err != nil {
		return "", err
	}
	return s.text(ctx, "generate interview script", prompt, llm.TierStandard)
}

// AnswerDigest renders each active question with the candidate's answer for the evaluation prompt.
// Unanswered questions show N/A and zero time.
func AnswerDigest(questions []types.Question, answers map[string]types.CandidateAnswer) string {
	blocks := make([]string, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		ans, ok := answers[q.ID]
		value := "N/A"
		if ok && ans.Value != "" {
			value = ans.Value
		}
		confidence := string(ans.Confidence)
		if confidence == "" {
			confidence = "not given"
		}
		// Self-assessment items have no right answer to grade against.
		correct := "n/a"
		if q.CorrectAnswer != "" {
			correct = fmt.Sprint(ok && q.IsCorrect(ans.Value))
		}
		blocks = append(blocks, fmt.Sprintf(
			"Q (%s, %s, TruthQuestion: %t): %s\nCandidate Answer: %s\nConfidence: %s\nCorrect: %s\nTime: %ds",
			q.Difficulty, q.Skill, q.IsTruthQuestion, q.Text,
			value, confidence, correct, ans.TimeTaken,
		))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Service) text(ctx context.Context, op, prompt string, tier llm.ModelTier) (string, error) {
	out, err := llm.Retry(ctx, s.Attempts, func(ctx context.Context) (string, error) {
		return s.client.GenerateContent(ctx, prompt, tier)
	})
	if err != nil {
		log.Printf("[assessment] %s failed: %v", op, err)
		return "", &APICallError{Operation: op, Cause: err}
	}
	return CleanText(out), nil
}

func (s *Service) structured(ctx context.Context, op, prompt string, tier llm.ModelTier) (string, error) {
	out, err := llm.Retry(ctx, s.Attempts, func(ctx context.Context) (string, error) {
		return s.client.GenerateJSON(ctx, prompt, tier)
	})
	if err != nil {
		log.Printf("[assessment] %s failed: %v", op, err)
		return "", &APICallError{Operation: op, Cause: err}
	}
	return llm.CleanJSONBlock(out), nil
}

func joinSkills(skills []string) string {
	if len(skills) == 0 {
		return "Not specified"
	}
	return strings.Join(skills, ", ")
}
