package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/screeniq/internal/config"
	"github.com/jonathan/screeniq/internal/observability"
	"github.com/jonathan/screeniq/internal/store"
	"github.com/jonathan/screeniq/internal/types"
)

var interviewScriptCmd = &cobra.Command{
	Use:   "interview-script",
	Short: "Draft follow-up interview questions for an assessed candidate",
	Long:  "Generate five interview questions that probe the gaps in a candidate's assessment feedback for one job.",
	RunE:  runInterviewScript,
}

var (
	scriptCandidateID string
	scriptJobID       string
	scriptSkills      []string
	scriptRecords     string
)

func init() {
	interviewScriptCmd.Flags().StringVarP(&scriptCandidateID, "candidate", "c", "", "Candidate ID or email (required)")
	interviewScriptCmd.Flags().StringVarP(&scriptJobID, "job", "j", "", "Job ID (required)")
	interviewScriptCmd.Flags().StringSliceVar(&scriptSkills, "skills", nil, "Skills to focus on (default: the job's skills)")
	interviewScriptCmd.Flags().StringVar(&scriptRecords, "records", "", "JSON-lines outcome file written by 'take --record'")

	_ = interviewScriptCmd.MarkFlagRequired("candidate")
	_ = interviewScriptCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(interviewScriptCmd)
}

func runInterviewScript(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}
	st, err := loadStoreWithRecords(ctx, cfg, scriptRecords)
	if err != nil {
		return err
	}

	job, candidate, app, err := findApplication(ctx, st, scriptCandidateID, scriptJobID)
	if err != nil {
		return err
	}

	svc, closeLLM, err := newAssessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLLM()

	skills := scriptSkills
	if len(skills) == 0 {
		skills = job.Skills
	}
	script, err := svc.GenerateInterviewScript(ctx, job, app.Feedback, skills)
	if err != nil {
		return fmt.Errorf("failed to generate interview script: %w", err)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintInterviewScript(candidate.Name, strings.TrimSpace(script))
	return nil
}

// findApplication resolves a candidate (by id or email) and their application for jobID.
func findApplication(ctx context.Context, st *store.Store, candidateRef, jobID string) (*types.Job, *types.Candidate, *types.Application, error) {
	job := st.Job(ctx, jobID)
	if job == nil {
		return nil, nil, nil, fmt.Errorf("job %q not found", jobID)
	}

	var candidate *types.Candidate
	if c := st.Candidate(ctx, candidateRef); c != nil {
		candidate = c
	} else {
		for _, c := range st.Candidates(ctx) {
			if strings.EqualFold(c.Email, candidateRef) {
				found := c
				candidate = &found
				break
			}
		}
	}
	if candidate == nil {
		return nil, nil, nil, fmt.Errorf("candidate %q not found", candidateRef)
	}

	app := candidate.Application(jobID)
	if app == nil {
		return nil, nil, nil, fmt.Errorf("candidate %q has not been assessed for job %q", candidateRef, jobID)
	}
	return job, candidate, app, nil
}

// loadStoreWithRecords loads the job store and merges any recorded outcomes into it.
func loadStoreWithRecords(ctx context.Context, cfg config.Config, records string) (*store.Store, error) {
	st, err := loadStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if records == "" {
		return st, nil
	}
	outcomes, err := loadRecords(records)
	if err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		st.MergeOutcome(ctx, o)
	}
	return st, nil
}
