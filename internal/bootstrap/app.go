package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"letter-backend/internal/extract"
	"letter-backend/internal/letters"
	"letter-backend/internal/llm"
	anthropicllm "letter-backend/internal/llm/anthropic"
	openaillm "letter-backend/internal/llm/openai"
	"letter-backend/internal/services/health"
	"letter-backend/internal/shared/config"
	"letter-backend/internal/shared/server"
	"letter-backend/internal/shared/storage/object"
	localstore "letter-backend/internal/shared/storage/object/local"
	s3store "letter-backend/internal/shared/storage/object/s3"
	"letter-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          object.ObjectStore
	LLM            llm.Client
	LettersService *letters.Service
	LettersHandler *letters.Handler
	Health         *health.Service
}

// Options lets callers replace dependencies, mainly for tests.
type Options struct {
	LLM   llm.Client
	Store object.ObjectStore
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Options{})
}

// BuildWith is Build with optional dependency overrides.
func BuildWith(cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if strings.TrimSpace(cfg.LLMProvider) == "" {
		cfg.LLMProvider = "anthropic"
	}
	ctx := context.Background()

	store := opts.Store
	if store == nil {
		var err error
		store, err = BuildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	client := opts.LLM
	if client == nil {
		client = BuildLLM(cfg)
	}

	app := &App{
		Config: cfg,
		Store:  store,
		LLM:    client,
		Health: health.NewService(cfg.LLMProvider, opts.LLM != nil || cfg.APIKey() != "", cfg.ObjectStoreType),
	}
	app.LettersService = NewLettersService(cfg, store, client)
	app.LettersHandler = letters.NewHandler(app.LettersService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		LettersHandler: app.LettersHandler,
		Health:         app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"provider":     cfg.LLMProvider,
		"model":        cfg.LLMModel,
	})
	return app, nil
}

// NewLettersService builds the generation service from configuration.
func NewLettersService(cfg config.Config, store object.ObjectStore, client llm.Client) *letters.Service {
	return &letters.Service{
		Store:               store,
		LLM:                 client,
		Policy:              extract.Policy{MaxSizeBytes: cfg.MaxFileSize},
		Provider:            cfg.LLMProvider,
		MaxTokens:           cfg.LLMMaxTokens,
		Temperature:         cfg.LLMTemperature,
		JobPostingMinLength: cfg.JobPostingMinLength,
	}
}

// BuildStore returns the object store selected by OBJECT_STORE.
func BuildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// BuildLLM returns the client for the configured provider. A missing key
// yields a client that fails each call with a configuration error.
func BuildLLM(cfg config.Config) llm.Client {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	switch cfg.LLMProvider {
	case "openai":
		return openaillm.NewClient(openaillm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		})
	default:
		return anthropicllm.NewClient(anthropicllm.Config{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		})
	}
}
