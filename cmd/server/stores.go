package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/QuangHuy54/IntelligentChatbot/internal/config"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	infradb "github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/database"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/dynamo"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/llm/openai"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/memory"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/paramstore"
	dbpkg "github.com/QuangHuy54/IntelligentChatbot/pkg/database"
)

// awsDeps holds the AWS clients; both are nil when nothing needs AWS.
type awsDeps struct {
	dynamo *awsdynamodb.Client
	params *paramstore.Client
}

func needsAWS(cfg *config.Config) bool {
	return cfg.ThreadStore.Driver == "dynamodb" || (cfg.LLM.APIKey == "" && cfg.LLM.APIKeyParam != "")
}

func newAWSDeps(ctx context.Context, cfg *config.Config) (*awsDeps, error) {
	deps := &awsDeps{}
	if !needsAWS(cfg) {
		return deps, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	deps.dynamo = awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	deps.params, err = paramstore.New(awsssm.NewFromConfig(awsCfg, func(o *awsssm.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create SSM client: %w", err)
	}
	return deps, nil
}

// apiKeySource prefers a configured key over Parameter Store.
func apiKeySource(cfg *config.Config, deps *awsDeps) (openai.APIKeySource, error) {
	if cfg.LLM.APIKey != "" || cfg.LLM.APIKeyParam == "" {
		return openai.StaticKey(cfg.LLM.APIKey), nil
	}
	if deps.params == nil {
		return nil, fmt.Errorf("llm.api_key_param is set but no SSM client is available")
	}
	slog.Info("llm api key will be read from parameter store", "parameter", cfg.LLM.APIKeyParam)
	return openai.NewParamStoreKey(deps.params, cfg.LLM.APIKeyParam), nil
}

// threadStore is the selected history backend plus whatever must be released
// on shutdown.
type threadStore struct {
	repo domain.ThreadRepository
	db   *sql.DB
}

func (s *threadStore) Close() {
	if s.db == nil {
		return
	}
	if err := dbpkg.Close(s.db, slog.Default()); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}

func newThreadStore(ctx context.Context, cfg *config.Config, deps *awsDeps, logger *slog.Logger) (*threadStore, error) {
	switch driver := cfg.ThreadStore.Driver; driver {
	case "memory":
		return &threadStore{repo: memory.NewThreadRepository()}, nil
	case dbpkg.DriverMySQL, dbpkg.DriverPostgres:
		db, err := dbpkg.Open(driver, cfg.ThreadStore.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := infradb.EnsureSchema(ctx, db, driver); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &threadStore{repo: infradb.NewThreadRepository(db, driver), db: db}, nil
	case "dynamodb":
		if deps.dynamo == nil {
			return nil, fmt.Errorf("dynamodb client is not configured")
		}
		repo, err := dynamo.NewThreadRepository(deps.dynamo, cfg.ThreadStore.DynamoDBTable)
		if err != nil {
			return nil, err
		}
		return &threadStore{repo: repo}, nil
	default:
		return nil, fmt.Errorf("unsupported thread store driver: %s", driver)
	}
}
