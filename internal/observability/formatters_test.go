package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/screeniq/internal/types"
)

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJob(&types.Job{
		Title:      "Backend Engineer (Go/Node)",
		Company:    "Netflix",
		Department: "Engineering",
		Skills:     []string{"Go", "Node.js", "Distributed Systems", "Kafka", "gRPC", "Postgres"},
	})
	output := buf.String()

	assert.Contains(t, output, "Backend Engineer (Go/Node)")
	assert.Contains(t, output, "Netflix")
	assert.Contains(t, output, "Cutoff:   70")
	assert.Contains(t, output, "• Distributed Systems")
	assert.Contains(t, output, "... and 1 more")
}

func TestPrintJob_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJob(nil)
	assert.Empty(t, buf.String())
}

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	q := types.Question{
		ID:            "q1",
		Text:          "Which hook memoises a computed value?",
		Options:       []string{"useEffect", "useMemo", "useRef"},
		CorrectAnswer: "useMemo",
		Skill:         "React",
		Difficulty:    types.DifficultyMedium,
	}
	p.PrintQuestion(2, 10, q, 9*time.Minute+5*time.Second)
	output := buf.String()

	assert.Contains(t, output, "Question 3 of 10")
	assert.Contains(t, output, "09:05")
	assert.Contains(t, output, "2) useMemo")
	assert.Contains(t, output, "Skill: React · medium")
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutcome(&types.SessionOutcome{
		Status:         types.StatusApplied,
		TabSwitches:    1,
		IntegrityScore: 85,
		SubmitReason:   types.SubmitTimer,
		Answers:        map[string]types.CandidateAnswer{"q1": {Value: "a"}},
		Evaluation: types.EvaluationResult{
			Score:              82,
			Suitability:        77,
			OneSentenceVerdict: "Strong fundamentals.",
			SkillBreakdown:     map[string]float64{"Go": 90, "Systems": 70},
			StudySuggestions:   []string{"Consensus protocols"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "APPLIED")
	assert.Contains(t, output, "Score:        82")
	assert.Contains(t, output, "85 (1 tab switches)")
	assert.Contains(t, output, "time ran out")
	assert.Contains(t, output, "Strong fundamentals.")
	assert.Less(t, strings.Index(output, "Go "), strings.Index(output, "Systems"))
	assert.Contains(t, output, "• Consensus protocols")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBriefing(strings.Repeat("Expect questions on rendering performance and accessibility. ", 4) +
		strings.Repeat("x", 80))
	output := buf.String()

	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"  • short"}, wrap("  • short", 20))
	assert.Equal(t, []string{"  alpha beta", "  gamma"}, wrap("  alpha beta gamma", 12))
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5))
	assert.Equal(t, []string{""}, wrap("", 5))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "10:00", formatClock(10*time.Minute))
	assert.Equal(t, "00:00", formatClock(-time.Second))
}
