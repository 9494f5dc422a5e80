package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PabloGalante/partsdesk/internal/adapters/catalog"
	"github.com/PabloGalante/partsdesk/internal/adapters/llm"
	"github.com/PabloGalante/partsdesk/internal/adapters/orders"
	firestorestore "github.com/PabloGalante/partsdesk/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/partsdesk/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/partsdesk/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/partsdesk/internal/app/assistant"
	"github.com/PabloGalante/partsdesk/internal/app/conversation"
	"github.com/PabloGalante/partsdesk/internal/app/handoff"
	"github.com/PabloGalante/partsdesk/internal/app/routing"
	"github.com/PabloGalante/partsdesk/internal/config"
	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

// app holds the wired services and everything that must be closed on exit.
type app struct {
	Conversations *conversation.Service
	Catalog       domain.Catalog

	closers []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			observability.Logger().Warn("close failed", "error", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	convStore, ticketStore, err := a.newStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	seed, err := catalog.DefaultSeed()
	if err != nil {
		return nil, fmt.Errorf("loading catalog seed: %w", err)
	}
	static, err := catalog.NewStaticCatalog(seed)
	if err != nil {
		return nil, fmt.Errorf("building static catalog: %w", err)
	}
	a.closers = append(a.closers, static)

	var cat domain.Catalog = static
	if cfg.CatalogLive {
		cat = catalog.NewLiveCatalog(static,
			catalog.NewLiveLookup(cfg.CatalogBaseURL, cfg.CatalogTimeout),
			cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
	}
	a.Catalog = cat

	router := routing.NewRouter(routing.Deps{
		Catalog:   cat,
		Guides:    catalog.NewGuideStore(cat, seed),
		Orders:    orders.NewMockStore(),
		Handoff:   handoff.NewService(ticketStore),
		AI:        assistant.NewResponder(llmClient, cat, cfg.AITimeout),
		Suggester: catalog.NewMatcher(cat, static, seed),
	})
	a.Conversations = conversation.NewService(convStore, router, cfg.HistoryLimit)

	observability.Logger().Info("services wired",
		"llm_provider", cfg.LLMProvider,
		"storage_backend", cfg.StorageBackend,
		"catalog_live", cfg.CatalogLive,
		"strategies", router.Strategies(),
	)
	return a, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	switch cfg.LLMProvider {
	case "mock":
		return llm.NewMockLLM(), nil
	case "vertex":
		return llm.NewVertexClient(ctx, llm.VertexConfig{
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Model:    cfg.ModelName,
		})
	case "gemini":
		return llm.NewVertexClient(ctx, llm.VertexConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.ModelName,
		})
	case "deepseek":
		return llm.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel)
	case "anthropic":
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func (a *app) newStores(ctx context.Context, cfg *config.Config) (domain.ConversationStore, domain.TicketStore, error) {
	switch cfg.StorageBackend {
	case "memory":
		return memstore.NewConversationStore(), memstore.NewTicketStore(), nil
	case "sqlite":
		s, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, s, nil
	case "firestore":
		s, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("opening firestore store: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, s, nil
	default:
		return nil, nil, errors.New("unknown storage backend " + cfg.StorageBackend)
	}
}
