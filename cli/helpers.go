package cli

import (
	"context"
	"fmt"

	"github.com/amlstack/advisor/engine/advisory"
	"github.com/amlstack/advisor/engine/core"
	"github.com/amlstack/advisor/engine/knowledge"
	"github.com/amlstack/advisor/engine/llm"
	"github.com/amlstack/advisor/pkg/config"
	"github.com/amlstack/advisor/pkg/logger"
)

// runtime bundles the long-lived resources a command needs. The command
// owns the lifecycle and must call Close when done.
type runtime struct {
	cfg      *config.Config
	factory  llm.Factory
	store    knowledge.Store
	embedder knowledge.Embedder
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	store, err := knowledge.NewStore(&knowledge.StoreConfig{
		Provider:  knowledge.Provider(cfg.Store.Provider),
		Endpoint:  cfg.Store.Endpoint,
		APIKey:    cfg.Store.APIKey,
		Dimension: cfg.Store.Dimension,
	})
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return &runtime{
		cfg:      cfg,
		factory:  llm.NewDefaultFactory(),
		store:    store,
		embedder: embedder,
	}, nil
}

// newEmbedder picks the embedding backend. The in-memory store has no
// persisted vectors to match against a remote embedding space, so it is
// paired with the deterministic hash embedder.
func newEmbedder(cfg *config.Config) (knowledge.Embedder, error) {
	if cfg.Store.Provider == string(knowledge.ProviderMemory) {
		return knowledge.HashEmbedder{Dimension: cfg.Store.Dimension}, nil
	}
	return knowledge.NewEmbedder(&knowledge.EmbedderConfig{
		Provider:  core.ProviderName(cfg.Embedder.Provider),
		Model:     cfg.Embedder.Model,
		APIKey:    cfg.LLM.APIKey,
		CacheSize: cfg.Embedder.CacheSize,
	})
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.store.Close(ctx); err != nil {
		logger.FromContext(ctx).Warn("Failed to close knowledge store", "error", err)
	}
}

// models maps the flat configuration onto per-role provider configs by
// overlaying the configured model and endpoint onto the role defaults.
func (r *runtime) models() (advisory.Models, error) {
	models := advisory.DefaultModels(core.ProviderName(r.cfg.LLM.Provider), r.cfg.LLM.APIKey)
	overlays := []struct {
		target *core.ProviderConfig
		model  string
	}{
		{&models.Router, r.cfg.LLM.RouterModel},
		{&models.Specialist, r.cfg.LLM.SpecialistModel},
		{&models.Synthesizer, r.cfg.LLM.SynthesizerModel},
	}
	for _, overlay := range overlays {
		err := overlay.target.Merge(&core.ProviderConfig{
			Model:  overlay.model,
			APIURL: r.cfg.LLM.APIURL,
		})
		if err != nil {
			return advisory.Models{}, fmt.Errorf("merge model config: %w", err)
		}
	}
	return models, nil
}

func (r *runtime) pipeline(mapping *knowledge.Mapping, sink advisory.EventSink) (*advisory.Pipeline, error) {
	models, err := r.models()
	if err != nil {
		return nil, err
	}
	return advisory.NewPipeline(r.factory, r.store, r.embedder, &advisory.Config{
		Models:                 models,
		SpecialistConcurrency:  r.cfg.Concurrency.Specialists,
		SynthesizerConcurrency: r.cfg.Concurrency.Synthesizer,
		Mapping:                mapping,
		Sink:                   sink,
		NumResults:             r.cfg.Retrieval.NumResults,
		SnippetLength:          r.cfg.Retrieval.SnippetLength,
	})
}

// buildMapping applies --collection overrides on top of the defaults.
// Malformed or unknown entries are logged and skipped, matching the
// tolerance of the mapping itself.
func buildMapping(ctx context.Context, overrides []string) *knowledge.Mapping {
	log := logger.FromContext(ctx)
	mapping := knowledge.NewMapping()
	for _, raw := range overrides {
		category, collection, err := knowledge.ParseOverride(raw)
		if err != nil {
			log.Warn("Ignoring collection override", "value", raw, "error", err)
			continue
		}
		if err := mapping.Override(category, collection); err != nil {
			log.Warn("Ignoring collection override", "value", raw, "error", err)
		}
	}
	return mapping
}
