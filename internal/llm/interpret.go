package llm

import (
	"encoding/json"
	"log/slog"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// Interpretation is the outcome of reading one model reply.
type Interpretation struct {
	Outcome constants.Outcome
	Raw     *entity.RawExtraction

	// Extraction is the schema-valid document when one was found, even if it held no
	// points and the regex path supplied them instead.
	Extraction *DrawingExtraction

	SynthesizedCoordinates bool
	ValidationError        string   // why the JSON path was rejected, if it was
	Dropped                []string // fields repaired or removed by sanitizing
}

// Interpret reads a model reply. The first balanced JSON block is
// normalized and validated against the drawing schema; a failure there, or a valid
// document without any levels, falls through to the regex scanner over the raw reply.
// Nothing recoverable is OutcomeEmpty, which is not an error.
func Interpret(reply string, resolver KindResolver, logger *slog.Logger) Interpretation {
	if logger == nil {
		logger = slog.Default()
	}
	var res Interpretation

	if extraction, dropped, err := decodeStructured(reply, logger); err != nil {
		res.ValidationError = err.Error()
		res.Dropped = dropped
		logger.Warn("llm.interpret.structured_rejected", "error", err, "reply_len", len(reply))
	} else {
		res.Extraction = extraction
		res.Dropped = dropped
		raw, synthesized := extraction.Expand(resolver)
		if len(raw.Points) > 0 {
			res.Outcome = constants.OutcomeStructured
			res.Raw = raw
			res.SynthesizedCoordinates = synthesized
			return res
		}
		logger.Info("llm.interpret.structured_empty", "reply_len", len(reply))
	}

	raw := RegexFallback(reply)
	if len(raw.Points) > 0 {
		res.Outcome = constants.OutcomeFallbackRegex
		res.Raw = raw
		res.SynthesizedCoordinates = true
		logger.Info("llm.interpret.regex_fallback", "points", len(raw.Points), "cut_fill", len(raw.CutFill))
		return res
	}

	res.Outcome = constants.OutcomeEmpty
	res.Raw = &entity.RawExtraction{}
	return res
}

func decodeStructured(reply string, logger *slog.Logger) (*DrawingExtraction, []string, error) {
	block, ok := ExtractJSONBlock(reply)
	if !ok {
		return nil, nil, errNoJSON
	}

	normalized, dropped, err := NormalizeAndSanitizeJSON([]byte(block), logger)
	if err != nil {
		return nil, dropped, err
	}

	// Validate strictly first, then give optional fields one lenient repair pass.
	if err := ValidateDrawingJSON(normalized); err != nil {
		cleaned, more, sErr := SanitizeOptionalFields(normalized)
		if sErr != nil {
			return nil, dropped, sErr
		}
		dropped = append(dropped, more...)
		if vErr := ValidateDrawingJSON(cleaned); vErr != nil {
			return nil, dropped, vErr
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "dropped", more)
		normalized = cleaned
	}

	var out DrawingExtraction
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, dropped, err
	}
	return &out, dropped, nil
}
