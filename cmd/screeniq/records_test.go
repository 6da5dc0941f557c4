package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/screeniq/internal/types"
)

func TestRecords_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcomes.jsonl")

	first := types.SessionOutcome{SessionID: "s1", CandidateEmail: "a@example.com", JobID: "j1", Status: types.StatusApplied}
	second := types.SessionOutcome{SessionID: "s2", CandidateEmail: "b@example.com", JobID: "j1", Status: types.StatusRejected}
	require.NoError(t, appendRecord(path, first))
	require.NoError(t, appendRecord(path, second))

	got, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].SessionID)
	assert.Equal(t, types.StatusRejected, got[1].Status)
}

func TestLoadRecords_Errors(t *testing.T) {
	_, err := loadRecords(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"session_id\":\"s1\"}\n\nnot json\n"), 0o644))
	_, err = loadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":3:")
}
