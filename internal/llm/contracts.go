package llm

import (
	"context"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// DrawingExtraction is the normalized shape we want from the model.
type DrawingExtraction struct {
	Points        []ExtractedPoint `json:"points"`
	LevelTable    []LevelRow       `json:"levelTable,omitempty"`
	Contours      []Contour        `json:"contours,omitempty"`
	GridReference *GridReference   `json:"gridReference,omitempty"`
	Scale         string           `json:"scale,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// ExtractedPoint is one spot level read off the document.
type ExtractedPoint struct {
	ID    string   `json:"id,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Z     *float64 `json:"z,omitempty"`
	Type  string   `json:"type,omitempty"` // free text, e.g. "NGL", "existing", "FGL"
	Label string   `json:"label,omitempty"`
}

// LevelRow pairs an existing and a design level for one point id.
type LevelRow struct {
	PointID string   `json:"pointId"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	NGL     *float64 `json:"ngl,omitempty"`
	FGL     *float64 `json:"fgl,omitempty"`
}

// Contour is a contour line elevation listed on the drawing.
type Contour struct {
	Elevation float64 `json:"elevation"`
	Type      string  `json:"type,omitempty"`
}

// GridReference reports whether a coordinate grid is printed on the drawing.
type GridReference struct {
	Detected bool   `json:"detected"`
	System   string `json:"system,omitempty"`
}

// ExtractRequest carries one document to the model.
type ExtractRequest struct {
	FileName string
	MimeType string
	Format   string // constants.PDF or constants.IMAGE
	Data     []byte
}

// DocumentModel sends a document to a multimodal model and returns its raw text reply.
// Implementations make exactly one request and do not retry.
type DocumentModel interface {
	Complete(ctx context.Context, req ExtractRequest) (string, error)
}

// KindResolver maps free text (a model "type" field) to a point kind.
type KindResolver interface {
	MatchText(text string) entity.Kind
}
