package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/dxf"
	"github.com/joseph-ayodele/levels-ingest/internal/entity"
	"github.com/joseph-ayodele/levels-ingest/internal/format"
	"github.com/joseph-ayodele/levels-ingest/internal/llm"
)

// Extractor is one ingestion front-end bound to a single upload.
type Extractor interface {
	Extract(ctx context.Context) (*entity.RawExtraction, Meta, error)
}

// Meta describes how an extraction was produced.
type Meta struct {
	Source   constants.Source
	Outcome  constants.Outcome
	Parse    *dxf.Stats
	Document *DocumentMeta

	// RawExtraction is the schema-valid model document, kept for debugging.
	RawExtraction *llm.DrawingExtraction
}

// DocumentMeta is returned to callers of the document endpoint.
type DocumentMeta struct {
	HasGrid                bool              `json:"hasGrid"`
	HasLevelTable          bool              `json:"hasLevelTable"`
	Scale                  string            `json:"scale,omitempty"`
	ContourCount           int               `json:"contourCount"`
	SynthesizedCoordinates bool              `json:"synthesizedCoordinates"`
	Outcome                constants.Outcome `json:"outcome"`
	MimeType               string            `json:"mimeType"`
	PageWidth              int               `json:"pageWidth,omitempty"`
	PageHeight             int               `json:"pageHeight,omitempty"`
	ReplyLength            int               `json:"replyLength"`
	ValidationError        string            `json:"validationError,omitempty"`
	Dropped                []string          `json:"droppedFields,omitempty"`
}

// TextExtractor runs the tag/value parser over a text upload.
type TextExtractor struct {
	Parser   *dxf.Parser
	Content  string
	FileType constants.FileType
}

// Extract rejects binary CAD before the parser sees a byte of it.
func (t TextExtractor) Extract(ctx context.Context) (*entity.RawExtraction, Meta, error) {
	meta := Meta{Source: constants.SourceText}
	if t.FileType == constants.FileTypeDWG || dxf.LooksBinary([]byte(t.Content)) {
		return nil, meta, &common.UnsupportedFormatError{Format: string(constants.FileTypeDWG), Suggestion: constants.DWGSuggestion}
	}
	if err := ctx.Err(); err != nil {
		return nil, meta, err
	}

	raw, st, err := t.Parser.ParseString(t.Content)
	meta.Parse = &st
	if err != nil {
		return nil, meta, fmt.Errorf("read drawing: %w", err)
	}
	meta.Outcome = constants.OutcomeStructured
	if raw.Empty() {
		meta.Outcome = constants.OutcomeEmpty
	}
	return raw, meta, nil
}

// DocumentExtractor sends a PDF or raster drawing to a document model and interprets
// the reply.
type DocumentExtractor struct {
	Model    llm.DocumentModel
	Resolver llm.KindResolver
	Logger   *slog.Logger

	DocumentBase64 string
	FileName       string
	MaxBytes       int64
}

func (d DocumentExtractor) Extract(ctx context.Context) (*entity.RawExtraction, Meta, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	meta := Meta{Source: constants.SourceDocument}

	data, err := DecodeDocument(d.DocumentBase64)
	if err != nil {
		return nil, meta, err
	}
	if d.MaxBytes > 0 && int64(len(data)) > d.MaxBytes {
		return nil, meta, common.NewAppError("DOCUMENT_TOO_LARGE",
			fmt.Sprintf("document is %d bytes, limit is %d", len(data), d.MaxBytes), common.ErrInvalidInput)
	}

	doc, err := format.Detect(d.FileName, data)
	if err != nil {
		return nil, meta, err
	}
	if d.Model == nil {
		return nil, meta, common.NewAppError("MODEL_UNAVAILABLE", "no document model configured", common.ErrInternal)
	}

	start := time.Now()
	reply, err := d.Model.Complete(ctx, llm.ExtractRequest{
		FileName: d.FileName,
		MimeType: doc.MimeType,
		Format:   doc.Format,
		Data:     data,
	})
	if err != nil {
		return nil, meta, err
	}

	res := llm.Interpret(reply, d.Resolver, logger)
	meta.Outcome = res.Outcome
	meta.RawExtraction = res.Extraction
	dm := &DocumentMeta{
		SynthesizedCoordinates: res.SynthesizedCoordinates,
		Outcome:                res.Outcome,
		MimeType:               doc.MimeType,
		PageWidth:              doc.Width,
		PageHeight:             doc.Height,
		ReplyLength:            len(reply),
		ValidationError:        res.ValidationError,
		Dropped:                res.Dropped,
	}
	if x := res.Extraction; x != nil {
		dm.HasGrid = x.HasGrid()
		dm.HasLevelTable = x.HasLevelTable()
		dm.Scale = x.Scale
		dm.ContourCount = len(x.Contours)
	}
	meta.Document = dm

	logger.Info("pipeline.document.interpreted",
		"file", d.FileName,
		"mime", doc.MimeType,
		"outcome", res.Outcome,
		"points", len(res.Raw.Points),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res.Raw, meta, nil
}

var errEmptyDocument = errors.New("document is empty")

// DecodeDocument decodes standard or URL-safe base64, with or without padding. A
// "data:<mime>;base64," prefix and embedded whitespace are tolerated.
func DecodeDocument(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, common.NewAppError("INVALID_DOCUMENT", "documentBase64 is empty", errors.Join(common.ErrInvalidInput, errEmptyDocument))
	}

	var firstErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(s)
		if err == nil {
			if len(data) == 0 {
				break
			}
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errEmptyDocument
	}
	return nil, common.NewAppError("INVALID_DOCUMENT", "documentBase64 is not valid base64", errors.Join(common.ErrInvalidInput, firstErr))
}
