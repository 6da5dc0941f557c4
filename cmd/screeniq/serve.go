package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/screeniq/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST and event-stream endpoints for running assessment sessions.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	st, err := loadStore(ctx, cfg)
	if err != nil {
		return err
	}
	svc, closeLLM, err := newAssessor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLLM()

	resolver, err := newResumeResolver(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:            cfg.ListenPort(),
		Store:           st,
		Assessor:        svc,
		Resume:          resolver,
		Publisher:       newPublisher(cfg),
		SessionLength:   cfg.Questions(),
		Duration:        cfg.Duration(),
		EvaluateTimeout: cfg.EvaluationTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
