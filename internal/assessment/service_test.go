package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/screeniq/internal/llm"
	"github.com/jonathan/screeniq/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string { return "mock-model" }

func (m *MockLLMClient) Close() error { return nil }

func testJob() *types.Job {
	return &types.Job{
		ID:          "j3",
		Title:       "Backend Engineer (Go/Node)",
		Company:     "Netflix",
		Description: "Build resilient streaming services.",
		Skills:      []string{"Go", "Node.js", "Microservices"},
		CutoffScore: 80,
	}
}

func poolJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":"q%d","text":"**Question** %d","type":"multiple_choice",`+
			`"options":["a","b","c","d"],"correct_answer":"a","difficulty":"hard","skill":"Go","is_truth_question":%t}`,
			i+1, i+1, i < 3)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Heading bold code", CleanText("  # Heading **bold** `code`  "))
	assert.Equal(t, "", CleanText("###"))
	assert.Equal(t, "plain", CleanText("plain"))
}

func TestGenerateBriefing(t *testing.T) {
	var gotPrompt string
	var gotTier llm.ModelTier
	svc := NewService(&MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			gotPrompt, gotTier = prompt, tier
			return "## Welcome\n**Ten** questions await.", nil
		},
	})

	text, err := svc.GenerateBriefing(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, "Welcome\nTen questions await.", text)
	assert.Contains(t, gotPrompt, "Backend Engineer (Go/Node)")
	assert.Contains(t, gotPrompt, "Go, Node.js, Microservices")
	assert.Equal(t, llm.TierLite, gotTier)
}

func TestGenerateBriefing_APIError(t *testing.T) {
	svc := NewService(&MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("quota exceeded")
		},
	})

	_, err := svc.GenerateBriefing(context.Background(), testJob())
	require.Error(t, err)
	var apiErr *APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "generate briefing", apiErr.Operation)
}

func TestGenerateQuestionPool(t *testing.T) {
	t.Run("parses and cleans pool", func(t *testing.T) {
		var gotPrompt string
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
				gotPrompt = prompt
				return "```json\n" + poolJSON(10) + "\n```", nil
			},
		})

		pool, err := svc.GenerateQuestionPool(context.Background(), testJob(), "Led Go migration at Acme")
		require.NoError(t, err)
		require.Len(t, pool, 10)
		assert.Equal(t, "Question 1", pool[0].Text)
		assert.True(t, pool[0].IsTruthQuestion)
		assert.False(t, pool[9].IsTruthQuestion)
		assert.Equal(t, types.DifficultyHard, pool[0].Difficulty)
		assert.Contains(t, gotPrompt, "Candidate Resume Context: Led Go migration at Acme")
		assert.Contains(t, gotPrompt, "EXACTLY 10")
	})

	t.Run("no resume context", func(t *testing.T) {
		var gotPrompt string
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
				gotPrompt = prompt
				return "[]", nil
			},
		})
		pool, err := svc.GenerateQuestionPool(context.Background(), testJob(), "  ")
		require.NoError(t, err)
		assert.Empty(t, pool)
		assert.Contains(t, gotPrompt, "No resume provided yet.")
	})

	t.Run("invalid JSON yields empty pool and parse error", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return "I could not generate questions", nil
			},
		})
		pool, err := svc.GenerateQuestionPool(context.Background(), testJob(), "")
		assert.Empty(t, pool)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
	})

	t.Run("bad items are dropped and the rest kept", func(t *testing.T) {
		items := make([]string, 0, 10)
		for i := 1; i <= 10; i++ {
			difficulty := "hard"
			switch i {
			case 4:
				difficulty = "Medium"
			case 7:
				difficulty = "impossible"
			}
			items = append(items, fmt.Sprintf(`{"id":"q%d","text":"Question %d","type":"multiple_choice",`+
				`"options":["a","b"],"correct_answer":"a","difficulty":%q,"skill":"Go"}`, i, i, difficulty))
		}
		items = append(items, `{"text":"No id here","type":"Short_Answer","options":[],"difficulty":"easy","skill":"Go"}`)

		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return "[" + strings.Join(items, ",") + "]", nil
			},
		})
		pool, err := svc.GenerateQuestionPool(context.Background(), testJob(), "")
		require.NoError(t, err)
		require.Len(t, pool, 10)

		for _, q := range pool {
			assert.NotEqual(t, "q7", q.ID)
		}
		assert.Equal(t, types.DifficultyMedium, pool[3].Difficulty)
		assert.Empty(t, pool[9].ID)
		assert.Equal(t, types.KindShortAnswer, pool[9].Kind)
		assert.Equal(t, "No id here", pool[9].Text)
	})

	t.Run("schema mismatch yields parse error", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return `[{"id":"q1","text":"x","type":"essay","options":[],"difficulty":"easy","skill":"Go"}]`, nil
			},
		})
		pool, err := svc.GenerateQuestionPool(context.Background(), testJob(), "")
		assert.Empty(t, pool)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
	})
}

func TestEvaluate(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", Text: "Channels?", Difficulty: types.DifficultyEasy, Skill: "Go", CorrectAnswer: "a"},
		{ID: "q2", Text: "Event loop?", Difficulty: types.DifficultyElite, Skill: "Node.js", CorrectAnswer: "b", IsTruthQuestion: true},
	}
	answers := map[string]types.CandidateAnswer{
		"q1": {Value: "a", Confidence: types.ConfidenceCertain, TimeTaken: 12},
	}

	t.Run("valid response", func(t *testing.T) {
		var gotPrompt string
		var gotTier llm.ModelTier
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
				gotPrompt, gotTier = prompt, tier
				return `{"score":84,"suitability":77,"feedback":"**Strong** Go",` +
					`"one_sentence_verdict":"Solid *backend* instincts.",` +
					`"skill_breakdown":{"technical":85,"logic":80,"domain":60},` +
					`"study_suggestions":["Node.js internals"]}`, nil
			},
		})

		res, err := svc.Evaluate(context.Background(), testJob(), questions, answers)
		require.NoError(t, err)
		assert.Equal(t, 84.0, res.Score)
		assert.Equal(t, 77.0, res.Suitability)
		assert.Equal(t, "Strong Go", res.Feedback)
		assert.Equal(t, "Solid backend instincts.", res.OneSentenceVerdict)
		assert.Equal(t, 60.0, res.SkillBreakdown["domain"])
		assert.Equal(t, []string{"Node.js internals"}, res.StudySuggestions)
		assert.Equal(t, llm.TierAdvanced, gotTier)
		assert.Contains(t, gotPrompt, "Candidate Answer: N/A")
		assert.Contains(t, gotPrompt, "Time: 12s")
	})

	t.Run("invalid JSON falls back to default", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return `{"score": 84, "feedback": `, nil
			},
		})
		res, err := svc.Evaluate(context.Background(), testJob(), questions, answers)
		require.Error(t, err)
		assert.Equal(t, types.DefaultEvaluation(), res)
	})

	t.Run("schema mismatch falls back to default", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return `{"score":"great","suitability":1,"feedback":"x","study_suggestions":[]}`, nil
			},
		})
		res, err := svc.Evaluate(context.Background(), testJob(), questions, answers)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Zero(t, res.Score)
		assert.NotEmpty(t, res.StudySuggestions)
	})

	t.Run("API failure falls back to default", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return "", errors.New("deadline exceeded")
			},
		})
		res, err := svc.Evaluate(context.Background(), testJob(), questions, answers)
		var apiErr *APICallError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Error evaluating", res.Feedback)
	})

	t.Run("empty study suggestions are filled", func(t *testing.T) {
		svc := NewService(&MockLLMClient{
			GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
				return `{"score":50,"suitability":50,"feedback":"ok","study_suggestions":[]}`, nil
			},
		})
		res, err := svc.Evaluate(context.Background(), testJob(), questions, answers)
		require.NoError(t, err)
		assert.Equal(t, []string{"Review job fundamentals"}, res.StudySuggestions)
	})
}

func TestAnswerDigest(t *testing.T) {
	questions := []types.Question{
		{ID: "q1", Text: "A?", Difficulty: types.DifficultyMedium, Skill: "SQL", CorrectAnswer: "x"},
		{ID: "q2", Text: "B?", Difficulty: types.DifficultyHard, Skill: "Go", CorrectAnswer: "y", IsTruthQuestion: true},
	}
	answers := map[string]types.CandidateAnswer{
		"q1": {Value: "x", TimeTaken: 4, Confidence: types.ConfidenceSomewhat},
	}

	digest := AnswerDigest(questions, answers)
	blocks := strings.Split(digest, "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "Q (medium, SQL, TruthQuestion: false): A?")
	assert.Contains(t, blocks[0], "Candidate Answer: x")
	assert.Contains(t, blocks[0], "Correct: true")
	assert.Contains(t, blocks[0], "Confidence: somewhat")
	assert.Contains(t, blocks[1], "TruthQuestion: true")
	assert.Contains(t, blocks[1], "Candidate Answer: N/A")
	assert.Contains(t, blocks[1], "Correct: false")
	assert.Contains(t, blocks[1], "Time: 0s")
}

func TestAnswerDigest_SelfAssessmentItemsAreUngraded(t *testing.T) {
	questions := []types.Question{
		{ID: "filler-1", Text: "Which best describes your hands-on experience with Go?", Skill: "Go",
			Options: []string{"I have shipped production work with it", "I have not used it yet"}},
		{ID: "filler-2", Text: "Which best describes your hands-on experience with Kafka?", Skill: "Kafka",
			Options: []string{"I have shipped production work with it", "I have not used it yet"}},
	}
	answers := map[string]types.CandidateAnswer{
		"filler-1": {Value: "I have shipped production work with it", TimeTaken: 2},
	}

	digest := AnswerDigest(questions, answers)
	assert.Equal(t, 2, strings.Count(digest, "Correct: n/a"))
	assert.NotContains(t, digest, "Correct: false")
	assert.Contains(t, digest, "Candidate Answer: I have shipped production work with it")
}

func TestGenerateInterviewScript(t *testing.T) {
	var gotPrompt string
	svc := NewService(&MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			gotPrompt = prompt
			return "1. Walk me through a Go race you fixed.", nil
		},
	})

	script, err := svc.GenerateInterviewScript(context.Background(), testJob(), "weak on concurrency", nil)
	require.NoError(t, err)
	assert.Equal(t, "1. Walk me through a Go race you fixed.", script)
	assert.Contains(t, gotPrompt, "weak on concurrency")
	assert.Contains(t, gotPrompt, "Go, Node.js, Microservices")
}

func TestOptimizeJobDescription(t *testing.T) {
	svc := NewService(&MockLLMClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "Build resilient streaming services.")
			return "# Tighter scope", nil
		},
	})
	out, err := svc.OptimizeJobDescription(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, "Tighter scope", out)
}

func TestService_Retries(t *testing.T) {
	orig := llm.RetryBackoff
	llm.RetryBackoff = 0
	defer func() { llm.RetryBackoff = orig }()

	calls := 0
	svc := NewService(&MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("transient")
			}
			return "briefing", nil
		},
	})
	svc.Attempts = 2

	text, err := svc.GenerateBriefing(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, "briefing", text)
	assert.Equal(t, 2, calls)
}
