// Package app wires the pipeline from configuration for the command-line entry points.
package app

import (
	"log/slog"
	"os"

	"github.com/joseph-ayodele/levels-ingest/internal/classify"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/llm"
	"github.com/joseph-ayodele/levels-ingest/internal/llm/openai"
	"github.com/joseph-ayodele/levels-ingest/internal/metrics"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// NewLogger returns a JSON or text slog logger on stderr at level.
func NewLogger(json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadPolicy reads the policy file named in cfg, or returns the defaults.
func LoadPolicy(cfg *common.Config, logger *slog.Logger) (classify.Policy, error) {
	if cfg.Policy.File == "" {
		return classify.DefaultPolicy(), nil
	}
	p, err := classify.LoadPolicy(cfg.Policy.File)
	if err != nil {
		return p, err
	}
	logger.Info("policy.loaded",
		"file", cfg.Policy.File,
		"ngl_keywords", len(p.NGLKeywords),
		"design_keywords", len(p.DesignKeywords),
		"radius", p.ProximityRadius,
	)
	return p, nil
}

// NewProcessor builds a processor from cfg. Without an API key the document model is
// left unset and document uploads fail with MODEL_UNAVAILABLE.
func NewProcessor(cfg *common.Config, m *metrics.Registry, logger *slog.Logger) (*pipeline.Processor, error) {
	policy, err := LoadPolicy(cfg, logger)
	if err != nil {
		return nil, err
	}

	var model llm.DocumentModel
	if cfg.LLM.APIKey != "" {
		model = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("OpenAI API key not configured, document uploads are disabled")
	}

	return pipeline.NewProcessor(logger, classify.New(policy), model, m, cfg.LLM.MaxDocumentMB), nil
}
