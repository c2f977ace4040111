package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/searchtool"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kbrag/internal/core/domain"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
	"github.com/custodia-labs/kbrag/internal/core/ports/driving"
	"github.com/custodia-labs/kbrag/internal/core/services"
	"github.com/custodia-labs/kbrag/internal/logger"
)

// App holds the services the commands run against.
type App struct {
	Settings  domain.Settings
	Knowledge driving.KnowledgeService
	Cache     driven.ResponseCache
	Prompts   driven.PromptStore
	Validator driven.LLMConfigValidator

	// PromptDir is watched by "mcp serve --watch". Empty disables it.
	PromptDir string

	settingsFile string
	closers      []io.Closer
	owned        bool
}

// app is the current application, wired by bootstrap or set by SetApp.
var app *App

// SetApp sets the application used by the commands. Commands do not
// load settings when an application has been set.
func SetApp(a *App) {
	app = a
}

// NewApp wires the knowledge pipeline for settings. A summarization
// backend that cannot be created is logged and answers degrade to raw
// chunk rendering.
func NewApp(settings domain.Settings) (*App, error) {
	a := &App{
		Settings:  settings,
		Validator: ai.NewConfigValidator(),
	}

	fs := filesystem.New()
	searcher := services.NewSearcher(settings, fs,
		searchtool.NewRipgrep(settings.WorkspacePath),
		searchtool.NewGrep(settings.WorkspacePath),
	)
	chunker := services.NewChunker(fs, services.WithChunkSize(settings.Search.ChunkSize))
	ranker := services.NewRanker(settings.Search.TopChunks)

	cache, err := a.newCache(settings.Distill)
	if err != nil {
		return nil, err
	}
	a.Cache = cache

	llm, err := ai.CreateLLMService(settings.Distill)
	if err != nil {
		logger.Warn("Summarization backend unavailable, answers will not be distilled: %v", err)
		llm = nil
	}
	if llm != nil {
		a.closers = append(a.closers, llm)
	} else if settings.Distill.Enabled {
		logger.Debug("Distillation enabled but no API key is set")
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("Using built-in prompts: %v", err)
	} else {
		a.Prompts = prompts
		a.PromptDir = prompts.Dir()
	}

	distiller := services.NewDistiller(llm, cache, settings.Distill)
	if a.Prompts != nil {
		distiller.SetPromptStore(a.Prompts)
	}

	a.Knowledge = services.NewKnowledgeService(settings, fs, searcher, chunker, ranker, distiller)
	return a, nil
}

func (a *App) newCache(settings domain.DistillSettings) (driven.ResponseCache, error) {
	switch settings.CacheBackend {
	case domain.CacheBackendSQLite:
		store, err := sqlite.NewStore(settings.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("open response cache: %w", err)
		}
		a.closers = append(a.closers, store)
		logger.Debug("Response cache at %s", store.Path())
		cache := store.ResponseCache(settings.CacheTTL)
		// Expired rows are otherwise only evicted when their key is asked again.
		if n, err := cache.Prune(context.Background()); err != nil {
			logger.Warn("Failed to prune response cache: %v", err)
		} else if n > 0 {
			logger.Debug("Pruned %d expired cached answers", n)
		}
		return cache, nil
	case domain.CacheBackendMemory, "":
		return memory.NewResponseCache(settings.CacheTTL), nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrUnsupportedType, settings.CacheBackend)
	}
}

// Close releases the summarization backend and the cache store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
