package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_AreValidJSON(t *testing.T) {
	for _, name := range []string{QuestionPool, Question, Evaluation} {
		t.Run(name, func(t *testing.T) {
			raw, err := Schema(name)
			require.NoError(t, err)

			var v map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(raw), &v))
			assert.Equal(t, "http://json-schema.org/draft-07/schema#", v["$schema"])
		})
	}
}

func TestSchema_Unknown(t *testing.T) {
	_, err := Schema("nope")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "nope", loadErr.Path)
}

func TestValidate_QuestionPool(t *testing.T) {
	assert.NoError(t, Validate(QuestionPool, `[]`))
	assert.NoError(t, Validate(QuestionPool, `[{"id":"q1"},{"difficulty":"impossible"}]`))
	assert.Error(t, Validate(QuestionPool, `{"id":"q1"}`))
	assert.Error(t, Validate(QuestionPool, `["q1","q2"]`))
}

func TestValidate_Question(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{
			name: "valid question",
			json: `{"id":"q1","text":"What is a goroutine?","type":"multiple_choice",
				"options":["a","b","c","d"],"correct_answer":"a","difficulty":"easy","skill":"Go"}`,
		},
		{
			name: "id is optional",
			json: `{"text":"t","type":"short_answer","options":[],"difficulty":"hard","skill":"Go"}`,
		},
		{
			name: "unknown difficulty",
			json: `{"id":"q1","text":"t","type":"multiple_choice","options":[],
				"difficulty":"impossible","skill":"Go"}`,
			wantErr: true,
		},
		{
			name:    "missing text",
			json:    `{"id":"q1","type":"multiple_choice","options":[],"difficulty":"easy","skill":"Go"}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			json:    `{"text":"t","type":"essay","options":[],"difficulty":"easy","skill":"Go"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Question, tt.json)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Evaluation(t *testing.T) {
	valid := `{"score":82,"suitability":75,"feedback":"Strong","one_sentence_verdict":"Hire.",
		"skill_breakdown":{"technical":80,"logic":70},"study_suggestions":["Concurrency"]}`
	assert.NoError(t, Validate(Evaluation, valid))

	err := Validate(Evaluation, `{"score":"high","suitability":75,"feedback":"x","study_suggestions":[]}`)
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, Evaluation, ve.Schema)
	assert.Contains(t, ve.Error(), "score")

	err = Validate(Evaluation, `{"score":150,"suitability":75,"feedback":"x","study_suggestions":[]}`)
	assert.Error(t, err)

	err = Validate(Evaluation, `{"score":10,"suitability":5,"feedback":"x"}`)
	assert.Error(t, err)
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(Evaluation, `{not json`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_Format(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "bad"}}}
	assert.Equal(t, "validation failed:\n  1. (root): bad\n", ve.Error())
}
