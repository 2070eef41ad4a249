package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/container"
	"github.com/pdiddy/talent-engine/internal/convert"
	"github.com/pdiddy/talent-engine/internal/extract"
	"github.com/pdiddy/talent-engine/internal/hr"
	"github.com/pdiddy/talent-engine/internal/knowledge"
	"github.com/pdiddy/talent-engine/internal/lightrag"
	"github.com/pdiddy/talent-engine/internal/matching"
	"github.com/pdiddy/talent-engine/internal/secrets"
	"github.com/pdiddy/talent-engine/internal/store"
	"github.com/pdiddy/talent-engine/pkg/types"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// app bundles the service built for one invocation with the resources it
// owns.
type app struct {
	svc     *hr.Service
	local   *knowledge.Store
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn("closing resource", zap.Error(err))
		}
	}
}

// needs lists the collaborators a command uses. Commands that never call
// the language model run without an API key.
type needs struct {
	model     bool
	converter bool
}

// buildService wires one hr.Service from the resolved configuration.
func buildService(ctx context.Context, n needs) (*app, error) {
	st, err := store.New(cfg.DataDir, log.Named("store"))
	if err != nil {
		return nil, err
	}

	var conv convert.Converter
	if n.converter {
		if conv, err = newConverter(); err != nil {
			return nil, err
		}
	}

	var x *extract.Extractor
	if n.model {
		backend, err := newBackend(ctx)
		if err != nil {
			return nil, err
		}
		x = extract.New(backend, cfg.Extraction.MaxRetries, log.Named("extract"))
	}

	a := &app{}

	idx, err := newIndex(a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = hr.New(st, conv, x, idx, hr.Options{
		Matching: matching.Options{
			LLMJudgment:      cfg.Matching.LLMJudgment,
			Parallelism:      cfg.Matching.Parallelism,
			CandidateTimeout: cfg.Matching.CandidateTimeout,
			RetrievalTimeout: cfg.Retrieval.Timeout,
			RetrievalMode:    cfg.Retrieval.Mode,
		},
		IndexTimeout: cfg.Retrieval.Timeout,
	}, log.Named("hr"))
	return a, nil
}

func newBackend(ctx context.Context) (extract.AIBackend, error) {
	switch cfg.Extraction.Provider {
	case types.ProviderGemini:
		key := loadedSecrets.Get(secrets.GeminiAPIKey, cfg.Extraction.APIKey)
		return extract.NewGeminiBackend(ctx, key, cfg.Extraction.Model)
	case types.ProviderClaude, "":
		key := loadedSecrets.Get(secrets.AnthropicAPIKey, cfg.Extraction.APIKey)
		if key == "" {
			return nil, fmt.Errorf("%w: no Anthropic API key; add .secrets/%s or set ANTHROPIC_API_KEY",
				types.ErrValidation, secrets.AnthropicAPIKey)
		}
		return &extract.ClaudeBackend{
			APIKey: key,
			Model:  cfg.Extraction.Model,
			Client: &http.Client{Timeout: cfg.Extraction.Timeout},
		}, nil
	default:
		return nil, types.Validationf("unknown extraction provider %q", cfg.Extraction.Provider)
	}
}

func newConverter() (convert.Converter, error) {
	switch cfg.Conversion.Backend {
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return convert.NewMarkitdownConverter(rt, cfg.Conversion.Image)
	case types.BackendNative, "":
		return convert.NewNativeConverter(loadedSecrets.Get(secrets.UnidocAPIKey, ""))
	default:
		return nil, types.Validationf("unknown conversion backend %q", cfg.Conversion.Backend)
	}
}

// newIndex opens the configured retrieval backend. It returns a nil
// hr.Index for the none backend.
func newIndex(a *app) (hr.Index, error) {
	switch cfg.Retrieval.Backend {
	case types.RetrievalSQLite, "":
		ks, err := knowledge.NewStore(cfg.DataDir, cfg.Retrieval.TopK, log.Named("knowledge"))
		if err != nil {
			return nil, err
		}
		a.local = ks
		a.closers = append(a.closers, ks)
		return ks, nil
	case types.RetrievalLightRAG:
		key := loadedSecrets.Get(secrets.LightRAGAPIKey, cfg.Retrieval.APIKey)
		return lightrag.New(cfg.Retrieval.URL, key, cfg.Retrieval.Timeout, log.Named("lightrag")), nil
	case types.RetrievalNone:
		return nil, nil
	default:
		return nil, types.Validationf("unknown retrieval backend %q", cfg.Retrieval.Backend)
	}
}
