package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/screeniq/internal/assessment"
	"github.com/jonathan/screeniq/internal/catalog"
	"github.com/jonathan/screeniq/internal/config"
	"github.com/jonathan/screeniq/internal/events"
	"github.com/jonathan/screeniq/internal/llm"
	"github.com/jonathan/screeniq/internal/resume"
	"github.com/jonathan/screeniq/internal/store"
)

// loadConfig layers CLI flags over the config file over the environment.
func loadConfig(getenv func(string) string) (config.Config, error) {
	cfg := config.Config{Provider: providerFlag, Verbose: verbose}

	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
		cfg.Verbose = cfg.Verbose || fileCfg.Verbose
		cfg.UseBrowser = fileCfg.UseBrowser
	}
	cfg = cfg.MergeWithDefaults(config.FromEnv(getenv))

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// loadStore returns the job catalogue from the configured file, or the demo data.
func loadStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if cfg.JobsFile == "" {
		return store.NewSeeded(), nil
	}

	jobs, err := catalog.Load(cfg.JobsFile)
	if err != nil {
		return nil, err
	}
	st := store.New()
	for _, job := range jobs {
		if _, err := st.AddJob(ctx, job); err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.JobsFile, err)
		}
	}
	if cfg.Verbose {
		log.Printf("[config] loaded %d jobs from %s", len(jobs), cfg.JobsFile)
	}
	return st, nil
}

// newAssessor connects to the configured model provider.
func newAssessor(ctx context.Context, cfg config.Config) (*assessment.Service, func(), error) {
	llmCfg, err := cfg.LLM()
	if err != nil {
		return nil, nil, err
	}
	if llmCfg.Provider != llm.ProviderVertex && cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or api_key in the config file)")
	}

	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("[llm] close: %v", err)
		}
	}
	return assessment.NewService(client), closeFn, nil
}

// newResumeResolver builds the resume reader, backed by R2 when it is configured.
func newResumeResolver(ctx context.Context, cfg config.Config) (*resume.Resolver, error) {
	var objects resume.Downloader
	if r2 := cfg.R2(); r2.Enabled() {
		objStore, err := resume.NewR2Store(ctx, r2)
		if err != nil {
			return nil, fmt.Errorf("failed to configure resume storage: %w", err)
		}
		objects = objStore
	}

	resolver := resume.NewResolver(objects)
	resolver.Browser = cfg.UseBrowser
	resolver.Verbose = cfg.Verbose
	return resolver, nil
}

// newPublisher connects to the broker when one is configured. A broker that cannot
// be reached only disables publishing.
func newPublisher(cfg config.Config) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewAMQPPublisher(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("[events] broker unavailable, session updates will not be published: %v", err)
		return events.NopPublisher{}
	}
	return pub
}
