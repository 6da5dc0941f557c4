package flow

import (
	"fmt"

	"github.com/jonathan/screeniq/internal/types"
)

// fillerOptions is the self-assessment scale used for padding questions.
var fillerOptions = []string{
	"I have shipped production work with it",
	"I have used it in side projects",
	"I have studied it but not used it",
	"I have not used it yet",
}

// selectQuestions fixes the active question set: the first n items of pool with
// unique non-empty ids, padded with skill self-assessment items when pool is short.
func selectQuestions(pool []types.Question, n int, job *types.Job) []types.Question {
	if len(pool) > n {
		pool = pool[:n]
	}

	out := make([]types.Question, 0, n)
	seen := make(map[string]bool, n)
	uniqueID := func(base string) string {
		id := base
		for i := 2; seen[id]; i++ {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		seen[id] = true
		return id
	}

	for i, q := range pool {
		q.Options = append([]string(nil), q.Options...)
		if q.ID == "" || seen[q.ID] {
			q.ID = uniqueID(fmt.Sprintf("q-%d", i+1))
		} else {
			seen[q.ID] = true
		}
		if q.Kind == "" {
			q.Kind = types.KindMultipleChoice
		}
		out = append(out, q)
	}

	skills := job.Skills
	if len(skills) == 0 {
		skills = []string{job.Title}
	}
	for i := len(out); i < n; i++ {
		skill := skills[i%len(skills)]
		out = append(out, types.Question{
			ID:         uniqueID(fmt.Sprintf("filler-%d", i+1)),
			Text:       fmt.Sprintf("Which best describes your hands-on experience with %s?", skill),
			Kind:       types.KindMultipleChoice,
			Options:    append([]string(nil), fillerOptions...),
			Difficulty: types.DifficultyEasy,
			Skill:      skill,
		})
	}
	return out
}

func containsOption(q *types.Question, value string) bool {
	if len(q.Options) == 0 {
		return true
	}
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}
