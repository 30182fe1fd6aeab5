package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/ai/gemini"
	"github.com/spigell/job-matcher/internal/logger"
	"github.com/spigell/job-matcher/internal/matching"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/session"
	"github.com/spigell/job-matcher/internal/storage"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

// env bundles what every command needs.
type env struct {
	config *Config
	logger *zap.Logger
	store  storage.Store
	close  func()
}

func newEnv(ctx context.Context) (*env, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	log.Debug("starting", zap.String("version", version), zap.Any("storage", config.Storage))

	store, closeStore, err := openStore(ctx, config.Storage, viper.GetBool("ephemeral"), log)
	if err != nil {
		return nil, err
	}

	return &env{
		config: config,
		logger: log,
		store:  store,
		close: func() {
			closeStore()
			_ = log.Sync()
		},
	}, nil
}

func openStore(ctx context.Context, cfg StorageConfig, ephemeral bool, log *zap.Logger) (storage.Store, func(), error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if ephemeral {
		backend = storage.BackendMemory
	}

	switch backend {
	case storage.BackendMemory:
		logger.WithStorage(log, backend, "").Debug("using in-memory storage")
		return storage.NewMemory(), func() {}, nil
	case storage.BackendRedis:
		store, err := storage.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.WithStorage(log, backend, cfg.Redis.Addr).Debug("using redis storage")
		return store, func() { _ = store.Close() }, nil
	case storage.BackendFile, "":
		store, err := storage.NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.WithStorage(log, storage.BackendFile, store.Dir()).Debug("using file storage")
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// newController restores the session. analyzer may be nil for commands that only edit the form.
func (e *env) newController(ctx context.Context, analyzer matching.Analyzer) *session.Controller {
	return session.New(ctx, analyzer, e.store,
		session.WithLogger(e.logger),
		session.WithDebounce(e.config.Storage.Debounce),
	)
}

func newAnalyzer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (matching.Analyzer, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiAPIKeyEnv)
	}

	aiLogger := logger.WithAI(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.Timeout, aiLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, cfg.Gemini.MaxLogLength, aiLogger), nil
}
