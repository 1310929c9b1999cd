package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/config"
	"github.com/liliang-cn/qualia/internal/repository"
	"github.com/liliang-cn/qualia/internal/search"
	"github.com/liliang-cn/qualia/internal/service"
	"github.com/liliang-cn/qualia/internal/thinking"
)

// app holds the wired components shared by serve and ask
type app struct {
	searcher     *search.Client
	orchestrator *service.Orchestrator
	close        func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, closeStore, err := openHistoryStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	searcher := search.NewClient(cfg.Search, logger)
	if !searcher.Configured() {
		logger.Warn("No Perplexity API key configured, answers will use mock data")
	}

	orchestrator, err := service.NewOrchestrator(
		service.OrchestratorConfig{
			ThinkingEnabled: cfg.Thinking.Enabled,
			Locale:          cfg.Thinking.Locale,
		},
		service.NewConversation(),
		searcher,
		thinking.NewSequencer(thinking.WithSpeed(cfg.Thinking.Speed)),
		service.NewHistoryService(store, logger),
		logger,
	)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &app{
		searcher:     searcher,
		orchestrator: orchestrator,
		close:        closeStore,
	}, nil
}

// openHistoryStore builds the configured history backend. A nil store means
// persistence is disabled.
func openHistoryStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.HistoryStore, func() error, error) {
	noop := func() error { return nil }
	backend := cfg.HistoryBackend()
	logger.Info("Chat history backend", zap.String("backend", backend), zap.String("table", cfg.History.Table))

	switch backend {
	case config.BackendSupabase:
		store, err := repository.NewSupabaseStore(
			cfg.History.Supabase.URL,
			cfg.History.Supabase.AnonKey,
			cfg.History.Table,
			cfg.History.Supabase.Timeout,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize supabase store: %w", err)
		}
		return store, noop, nil

	case config.BackendSQLite:
		db, err := repository.NewDB(cfg.History.SQLite.Path, cfg.History.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo := repository.NewHistoryRepository(db)
		return repo, repo.Close, nil

	case config.BackendDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.History.DynamoDB.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.History.DynamoDB.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.History.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.History.DynamoDB.Endpoint)
			}
		})
		store, err := repository.NewDynamoStore(client, cfg.History.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize dynamodb store: %w", err)
		}
		return store, noop, nil
	}

	return nil, noop, nil
}
