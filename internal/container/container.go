// Package container wires the application: store, repositories, services
// and their lifecycle.
package container

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"datalens/adapters/jsonstore"
	"datalens/adapters/llm"
	"datalens/adapters/tabular"
	"datalens/app/analysis"
	"datalens/app/assistant"
	"datalens/app/datasets"
	"datalens/app/training"
	"datalens/domain/chat"
	"datalens/internal"
	"datalens/internal/config"
	"datalens/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Store   *jsonstore.Store
	Uploads *jsonstore.UploadStorage

	// Repositories
	DatasetRepo      ports.DatasetRepository
	ModelRepo        ports.ModelRepository
	ConversationRepo ports.ConversationRepository
	SettingsRepo     ports.SettingsRepository

	// Services
	Datasets  *datasets.Service
	Analysis  *analysis.Service
	Training  *training.Service
	Assistant *assistant.Service

	Maintenance *jsonstore.Maintenance
}

// New opens the store and wires every repository and service. Maintenance
// jobs are created but not started; call StartMaintenance once ready.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))

	store, err := jsonstore.Open(cfg.Store.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Store.Dir, err)
	}

	models, err := jsonstore.NewModelRepository(filepath.Join(cfg.Store.Dir, "models"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open model repository: %w", err)
	}

	c := &Container{
		Config:           cfg,
		Logger:           logger,
		Store:            store,
		Uploads:          jsonstore.NewUploadStorage(cfg.Uploads.Dir),
		DatasetRepo:      jsonstore.NewDatasetRepository(store),
		ModelRepo:        models,
		ConversationRepo: jsonstore.NewConversationRepository(store),
		SettingsRepo:     jsonstore.NewSettingsRepository(store),
	}

	loader := &tabular.Loader{}
	c.Datasets = datasets.NewService(c.DatasetRepo, c.ModelRepo, c.Uploads, loader, logger)
	c.Analysis = analysis.NewService(c.DatasetRepo, loader, logger)
	c.Training = training.NewService(c.DatasetRepo, c.ModelRepo, loader, logger)
	c.Assistant = assistant.NewService(
		c.ConversationRepo, c.DatasetRepo, c.SettingsRepo,
		clientFactory(cfg), assistant.NewToolset(c.Analysis), logger,
	)

	c.Maintenance = jsonstore.NewMaintenance(store, c.DatasetRepo, c.Uploads,
		cfg.Store.FlushInterval, cfg.Uploads.Retention)

	return c, nil
}

// StartMaintenance begins the background flush and cleanup jobs
func (c *Container) StartMaintenance() error {
	return c.Maintenance.Start()
}

// Shutdown stops background jobs and closes the store
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Maintenance != nil {
		c.Maintenance.Stop()
	}
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// clientFactory builds LLM clients. Values saved through the settings API
// override the static AI config; connection parameters stay config-driven.
func clientFactory(cfg *config.Config) assistant.ClientFactory {
	return func(s *chat.Settings) ports.LLMClient {
		llmCfg := llm.Config{
			Provider:    cfg.AI.Provider,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			BaseURL:     cfg.AI.BaseURL,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     time.Duration(cfg.AI.Timeout) * time.Second,
		}
		if s != nil {
			if s.Provider != "" {
				llmCfg.Provider = s.Provider
			}
			if s.APIKey != "" {
				llmCfg.APIKey = s.APIKey
			}
			if s.Model != "" {
				llmCfg.Model = s.Model
			}
			if s.Temperature > 0 {
				llmCfg.Temperature = s.Temperature
			}
			if s.MaxTokens > 0 {
				llmCfg.MaxTokens = s.MaxTokens
			}
		}
		return llm.NewClient(llmCfg)
	}
}
