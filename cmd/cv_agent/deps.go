package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/cv-tailor/internal/adapt"
	"github.com/jonathan/cv-tailor/internal/analyzer"
	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/llm"
	"github.com/jonathan/cv-tailor/internal/pipeline"
	"github.com/jonathan/cv-tailor/internal/profile"
	"github.com/jonathan/cv-tailor/internal/research"
	"github.com/jonathan/cv-tailor/internal/retriever"
	"github.com/jonathan/cv-tailor/internal/store"
)

// app bundles the wired pipeline and the resources that need closing.
type app struct {
	pipeline *pipeline.Pipeline
	store    *store.Store
	client   llm.Client
}

func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	a.store.Close()
}

// buildApp wires the pipeline from configuration: profile, completion client,
// researcher, and the optional store.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, &llm.Config{
		Provider:    llm.Provider(cfg.Provider),
		EndpointURL: cfg.EndpointURL,
		ModelID:     cfg.ModelID,
		APIKey:      cfg.APIKey,
		Timeout:     cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	adapter := adapt.NewService(client)

	researcher := research.New(ctx, research.Config{
		APIKey:   cfg.SearchAPIKey,
		EngineID: cfg.SearchEngineID,
		Enabled:  cfg.EnableWebSearch,
		Timeout:  15 * time.Second,
	})

	var st *store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without persistence...\n")
			st = nil
		} else if err := st.EnsureSchema(ctx); err != nil {
			fmt.Printf("Warning: failed to apply database schema: %v\n", err)
			st.Close()
			st = nil
		}
	}

	weights := retriever.DefaultWeights()
	if cfg.TechWeight > 0 {
		weights.Technology = cfg.TechWeight
	}

	p := pipeline.New(pipeline.Deps{
		Profile: prof,
		Analyzer: analyzer.New(adapter, analyzer.Options{
			UseBrowser:      cfg.UseBrowser,
			PrimaryLanguage: prof.PrimaryLanguage,
		}),
		Adapter:    adapter,
		Retriever:  retriever.New(weights),
		Researcher: researcher,
		Store:      st,
	})

	return &app{pipeline: p, store: st, client: client}, nil
}

// loadConfig merges config file, environment, and defaults; flag overrides
// are applied by the callers before validation.
func loadConfig(path string, verbose bool) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if verbose {
			fmt.Printf("Loaded config from: %s\n", path)
		}
	}
	cfg.FromEnv()
	return cfg, nil
}
