// Package pipeline turns one upload into a ParsedDrawing. Both front-ends, the
// tag/value parser and the document model, produce a RawExtraction that goes through the
// same classification and aggregation.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/classify"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/dxf"
	"github.com/joseph-ayodele/levels-ingest/internal/entity"
	"github.com/joseph-ayodele/levels-ingest/internal/llm"
	"github.com/joseph-ayodele/levels-ingest/internal/metrics"
)

// Result is what callers get back for one upload.
type Result struct {
	Drawing    entity.ParsedDrawing
	Summary    entity.Summary
	Meta       Meta
	LastResort bool
}

// Processor coordinates extraction then assembly.
type Processor struct {
	Logger     *slog.Logger
	Parser     *dxf.Parser
	Model      llm.DocumentModel
	Classifier *classify.Classifier
	Metrics    *metrics.Registry

	MaxDocumentBytes int64
}

// NewProcessor wires a processor. model may be nil when only text uploads are served;
// m may be nil to disable metrics.
func NewProcessor(logger *slog.Logger, c *classify.Classifier, model llm.DocumentModel, m *metrics.Registry, maxDocumentMB int) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = classify.New(classify.DefaultPolicy())
	}
	if maxDocumentMB <= 0 {
		maxDocumentMB = constants.MaxDocumentMBDefault
	}
	return &Processor{
		Logger:           logger,
		Parser:           dxf.NewParser(logger),
		Model:            model,
		Classifier:       c,
		Metrics:          m,
		MaxDocumentBytes: int64(maxDocumentMB) << 20,
	}
}

// ProcessText parses an ASCII tag/value drawing. A dwg file type is rejected with
// *common.UnsupportedFormatError.
func (p *Processor) ProcessText(ctx context.Context, content string, fileType constants.FileType) (*Result, error) {
	return p.Run(ctx, TextExtractor{Parser: p.Parser, Content: content, FileType: fileType})
}

// ProcessDocument sends a base64 PDF or raster drawing to the document model.
func (p *Processor) ProcessDocument(ctx context.Context, documentBase64, fileName string) (*Result, error) {
	return p.Run(ctx, DocumentExtractor{
		Model:          p.Model,
		Resolver:       p.Classifier,
		Logger:         p.Logger,
		DocumentBase64: documentBase64,
		FileName:       fileName,
		MaxBytes:       p.MaxDocumentBytes,
	})
}

// Run extracts with ext and assembles the result.
func (p *Processor) Run(ctx context.Context, ext Extractor) (*Result, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()

	raw, meta, err := ext.Extract(ctx)
	if err != nil {
		p.recordFailure(err)
		p.Logger.Warn("pipeline.extract.failed",
			"req_id", reqID,
			"source", meta.Source,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	a := Assemble(raw, p.Classifier)
	res := &Result{Drawing: a.Drawing, Summary: a.Summary, Meta: meta, LastResort: a.LastResort}

	elapsed := time.Since(start)
	if p.Metrics != nil {
		p.Metrics.RecordDrawing(string(meta.Source), string(meta.Outcome), elapsed,
			a.Summary.NGLPoints, a.Summary.DesignPoints, a.Summary.UnknownPoints)
	}
	attrs := []any{
		"req_id", reqID,
		"source", meta.Source,
		"outcome", meta.Outcome,
		"points", a.Summary.TotalPoints,
		"ngl", a.Summary.NGLPoints,
		"design", a.Summary.DesignPoints,
		"unknown", a.Summary.UnknownPoints,
		"layers", a.Summary.LayerCount,
		"last_resort", a.LastResort,
		"elapsed_ms", elapsed.Milliseconds(),
	}
	if st := meta.Parse; st != nil {
		attrs = append(attrs, "lines", st.Lines, "entities", st.Entities, "skipped", st.Skipped, "truncated", st.FoundEntities && !st.Terminated)
	}
	p.Logger.Info("pipeline.ok", attrs...)
	return res, nil
}

func (p *Processor) recordFailure(err error) {
	if p.Metrics == nil {
		return
	}
	var uf *common.UnsupportedFormatError
	var ue *llm.UpstreamError
	switch {
	case errors.As(err, &uf):
		p.Metrics.RecordRejected(uf.Format)
	case errors.As(err, &ue):
		p.Metrics.RecordUpstreamError(string(ue.Kind))
	}
}
