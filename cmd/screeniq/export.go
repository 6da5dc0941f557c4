package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/screeniq/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a job's assessment results to Excel",
	Long:  "Write a ranked .xlsx report of every candidate assessed for a job, including outcomes recorded by 'take --record'.",
	RunE:  runExport,
}

var (
	exportJobID   string
	exportOut     string
	exportRecords string
)

func init() {
	exportCmd.Flags().StringVarP(&exportJobID, "job", "j", "", "Job ID (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default: <job>-report.xlsx)")
	exportCmd.Flags().StringVar(&exportRecords, "records", "", "JSON-lines outcome file written by 'take --record'")

	_ = exportCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}
	st, err := loadStoreWithRecords(ctx, cfg, exportRecords)
	if err != nil {
		return err
	}
	job := st.Job(ctx, exportJobID)
	if job == nil {
		return fmt.Errorf("job %q not found", exportJobID)
	}

	out := exportOut
	if out == "" {
		out = job.ID + "-report"
	}
	path, err := report.ExportOutcomes(*job, st.Candidates(ctx), out)
	if err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report for %s written to %s\n", job.ID, path) //nolint:errcheck
	return nil
}
