package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/screeniq/internal/config"
	"github.com/jonathan/screeniq/internal/events"
	"github.com/jonathan/screeniq/internal/store"
	"github.com/jonathan/screeniq/internal/types"
)

// setGlobals overrides the root flags for one test.
func setGlobals(t *testing.T, cfgPath, provider string, verb bool) {
	t.Helper()
	oldPath, oldProvider, oldVerbose := configPath, providerFlag, verbose
	configPath, providerFlag, verbose = cfgPath, provider, verb
	t.Cleanup(func() {
		configPath, providerFlag, verbose = oldPath, oldProvider, oldVerbose
	})
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screeniq.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"provider":"genai","session_length":5,"verbose":true}`), 0o644))

	env := envFrom(map[string]string{
		"GEMINI_API_KEY": "env-key",
		"LLM_PROVIDER":   "vertex",
		"PORT":           "9090",
	})

	t.Run("file over env", func(t *testing.T) {
		setGlobals(t, path, "", false)
		cfg, err := loadConfig(env)
		require.NoError(t, err)
		assert.Equal(t, "genai", cfg.Provider)
		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, 5, cfg.Questions())
		assert.Equal(t, 9090, cfg.ListenPort())
		assert.True(t, cfg.Verbose)
	})

	t.Run("flag over file", func(t *testing.T) {
		setGlobals(t, path, "gemini", false)
		cfg, err := loadConfig(env)
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Provider)
	})

	t.Run("env only", func(t *testing.T) {
		setGlobals(t, "", "", false)
		cfg, err := loadConfig(env)
		require.NoError(t, err)
		assert.Equal(t, "vertex", cfg.Provider)
		assert.Equal(t, config.DefaultSessionLength, cfg.Questions())
	})

	t.Run("invalid provider", func(t *testing.T) {
		setGlobals(t, "", "openai", false)
		_, err := loadConfig(env)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		setGlobals(t, filepath.Join(dir, "nope.json"), "", false)
		_, err := loadConfig(env)
		assert.Error(t, err)
	})
}

func TestLoadStore(t *testing.T) {
	ctx := context.Background()

	st, err := loadStore(ctx, config.Config{})
	require.NoError(t, err)
	assert.Len(t, st.Jobs(ctx), 3)

	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`jobs:
  - id: platform
    title: Platform Engineer
    company: Stripe
    skills: [Go, Kubernetes]
    cutoff_score: 80
`), 0o644))

	st, err = loadStore(ctx, config.Config{JobsFile: path})
	require.NoError(t, err)
	jobs := st.Jobs(ctx)
	require.Len(t, jobs, 1)
	assert.Equal(t, "platform", jobs[0].ID)
	assert.Equal(t, 80, jobs[0].Cutoff())
	assert.Empty(t, st.Candidates(ctx))

	_, err = loadStore(ctx, config.Config{JobsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadStoreWithRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "outcomes.jsonl")
	require.NoError(t, appendRecord(path, types.SessionOutcome{
		SessionID:      "s1",
		CandidateName:  "Sam Park",
		CandidateEmail: "sam@example.com",
		JobID:          "j1",
		Status:         types.StatusApplied,
		Evaluation:     types.EvaluationResult{Score: 91, Feedback: "Great"},
	}))

	st, err := loadStoreWithRecords(ctx, config.Config{}, path)
	require.NoError(t, err)
	board := st.Leaderboard(ctx, "j1")
	require.Len(t, board, 2)
	assert.Equal(t, "Sam Park", board[0].Name)
}

func TestFindApplication(t *testing.T) {
	ctx := context.Background()
	st := store.NewSeeded()

	job, c, app, err := findApplication(ctx, st, "c-demo-1", "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, "Alex Rivera", c.Name)
	assert.NotEmpty(t, app.Feedback)

	_, c, _, err = findApplication(ctx, st, "ALEX.RIVERA@tech.io", "j1")
	require.NoError(t, err)
	assert.Equal(t, "c-demo-1", c.ID)

	_, _, _, err = findApplication(ctx, st, "c-demo-1", "j3")
	assert.Error(t, err)
	_, _, _, err = findApplication(ctx, st, "nobody", "j1")
	assert.Error(t, err)
	_, _, _, err = findApplication(ctx, st, "c-demo-1", "missing")
	assert.Error(t, err)
}

func TestNewAssessor_RequiresAPIKey(t *testing.T) {
	_, _, err := newAssessor(context.Background(), config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewResumeResolver_WithoutObjectStorage(t *testing.T) {
	r, err := newResumeResolver(context.Background(), config.Config{UseBrowser: true})
	require.NoError(t, err)
	assert.Nil(t, r.Objects)
	assert.True(t, r.Browser)
}

func TestNewPublisher_WithoutBroker(t *testing.T) {
	assert.IsType(t, events.NopPublisher{}, newPublisher(config.Config{}))
}

func TestExportCommand(t *testing.T) {
	setGlobals(t, "", "", false)
	for _, k := range []string{"JOBS_FILE", "LLM_PROVIDER", "R2_ACCOUNT_ID", "R2_BUCKET", "R2_ACCESS_KEY", "R2_SECRET_KEY", "PORT"} {
		t.Setenv(k, "")
	}
	out := filepath.Join(t.TempDir(), "frontend")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"export", "--job", "j1", "--out", out})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), out+".xlsx")

	f, err := excelize.OpenFile(out + ".xlsx")
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Candidates", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Alex Rivera", name)
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"take without job", []string{"take", "--resume", "cv.pdf"}},
		{"interview-script without candidate", []string{"interview-script", "--job", "j1"}},
		{"optimize-job without source", []string{"optimize-job"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				rootCmd.SetOut(nil)
				rootCmd.SetErr(nil)
			})
			assert.Error(t, rootCmd.Execute())
		})
	}
}
