package types

// QuestionKind is the answer format of a question.
type QuestionKind string

// Question kinds
const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindShortAnswer    QuestionKind = "short_answer"
	KindTruthCheck     QuestionKind = "truth_check"
)

// ConfidenceLevel is the candidate's self-reported certainty in an answer.
type ConfidenceLevel string

// Confidence levels
const (
	ConfidenceUnsure   ConfidenceLevel = "unsure"
	ConfidenceSomewhat ConfidenceLevel = "somewhat"
	ConfidenceCertain  ConfidenceLevel = "certain"
)

// Valid reports whether c is empty or one of the known levels.
func (c ConfidenceLevel) Valid() bool {
	switch c {
	case "", ConfidenceUnsure, ConfidenceSomewhat, ConfidenceCertain:
		return true
	}
	return false
}

// Question is one item of a generated question pool.
type Question struct {
	ID              string       `json:"id"`
	Text            string       `json:"text"`
	Kind            QuestionKind `json:"type"`
	Options         []string     `json:"options"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	Difficulty      Difficulty   `json:"difficulty"`
	Skill           string       `json:"skill"`
	IsTruthQuestion bool         `json:"is_truth_question,omitempty"`
}

// IsCorrect reports whether value matches the recorded correct answer.
// Questions without a correct answer are never correct.
func (q *Question) IsCorrect(value string) bool {
	return q.CorrectAnswer != "" && value == q.CorrectAnswer
}

// Public returns a copy of the question without its correct answer.
func (q Question) Public() Question {
	q.CorrectAnswer = ""
	q.Options = append([]string(nil), q.Options...)
	return q
}

// CandidateAnswer is the recorded answer to a single question.
type CandidateAnswer struct {
	Value      string          `json:"value"`
	Confidence ConfidenceLevel `json:"confidence,omitempty"`
	TimeTaken  int             `json:"time_taken"`
}
