package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/screeniq/internal/catalog"
	"github.com/jonathan/screeniq/internal/types"
)

var optimizeJobCmd = &cobra.Command{
	Use:   "optimize-job",
	Short: "Rewrite a job description for clarity",
	Long:  "Ask the model for a tightened job description and a sanity check of the skill mix, for a catalogue job or a YAML file.",
	RunE:  runOptimizeJob,
}

var (
	optimizeJobID string
	optimizeFile  string
	optimizeOut   string
)

func init() {
	optimizeJobCmd.Flags().StringVarP(&optimizeJobID, "job", "j", "", "Job ID from the catalogue")
	optimizeJobCmd.Flags().StringVarP(&optimizeFile, "in", "i", "", "YAML job file (first job is used)")
	optimizeJobCmd.Flags().StringVarP(&optimizeOut, "out", "o", "", "Write the optimized description to this file instead of stdout")
	rootCmd.AddCommand(optimizeJobCmd)
}

func runOptimizeJob(cmd *cobra.Command, _ []string) error {
	if (optimizeJobID == "") == (optimizeFile == "") {
		return fmt.Errorf("exactly one of --job or --in is required")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}

	var job *types.Job
	if optimizeFile != "" {
		jobs, err := catalog.Load(optimizeFile)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return fmt.Errorf("no jobs in %s", optimizeFile)
		}
		job = &jobs[0]
	} else {
		st, err := loadStore(ctx, cfg)
		if err != nil {
			return err
		}
		if job = st.Job(ctx, optimizeJobID); job == nil {
			return fmt.Errorf("job %q not found", optimizeJobID)
		}
	}

	svc, closeLLM, err := newAssessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLLM()

	optimized, err := svc.OptimizeJobDescription(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to optimize job description: %w", err)
	}
	optimized = strings.TrimSpace(optimized) + "\n"

	if optimizeOut != "" {
		if err := os.WriteFile(optimizeOut, []byte(optimized), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Optimized description for %s written to %s\n", job.ID, optimizeOut) //nolint:errcheck
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), optimized) //nolint:errcheck
	return nil
}
