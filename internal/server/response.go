package server

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/entity"
	"github.com/joseph-ayodele/levels-ingest/internal/llm"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// TextRequest is the body of a tag/value drawing upload. An empty fileContent is
// accepted: a dxf without an ENTITIES section yields an empty drawing, and a dwg is
// always rejected with the conversion suggestion.
type TextRequest struct {
	FileContent string `json:"fileContent"`
	FileType    string `json:"fileType" validate:"required,oneof=dxf dwg"`
}

// DocumentRequest is the body of a PDF or raster drawing upload.
type DocumentRequest struct {
	DocumentBase64 string `json:"documentBase64" validate:"required"`
	FileName       string `json:"fileName" validate:"max=255"`
}

// DrawingResponse is returned by both upload endpoints on success.
type DrawingResponse struct {
	Success         bool                    `json:"success"`
	Data            *entity.ParsedDrawing   `json:"data"`
	TerrainAnalysis *entity.TerrainAnalysis `json:"terrainAnalysis"`
	Summary         *entity.Summary         `json:"summary"`
	Metadata        *pipeline.DocumentMeta  `json:"metadata,omitempty"`
	RawExtraction   *llm.DrawingExtraction  `json:"rawExtraction,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
	Status     int    `json:"status,omitempty"` // upstream HTTP status
	Kind       string `json:"kind,omitempty"`   // upstream failure kind
	Code       string `json:"code,omitempty"`
}

func NewDrawingResponse(res *pipeline.Result) DrawingResponse {
	return DrawingResponse{
		Success:         true,
		Data:            &res.Drawing,
		TerrainAnalysis: res.Drawing.Terrain,
		Summary:         &res.Summary,
		Metadata:        res.Meta.Document,
		RawExtraction:   res.Meta.RawExtraction,
	}
}

// describeError maps a pipeline error to an HTTP status and body.
func describeError(err error) (int, ErrorResponse) {
	var (
		uf   *common.UnsupportedFormatError
		ue   *llm.UpstreamError
		verr common.ValidationErrors
		ae   *common.AppError
		mbe  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &uf):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: uf.Error(), Suggestion: uf.Suggestion}
	case errors.As(err, &ue):
		body := ErrorResponse{Error: ue.Error(), Status: ue.Status, Kind: string(ue.Kind)}
		switch ue.Kind {
		case llm.UpstreamRateLimited:
			return http.StatusTooManyRequests, body
		case llm.UpstreamQuotaExhausted:
			return http.StatusPaymentRequired, body
		default:
			return http.StatusBadGateway, body
		}
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: verr.Error()}
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"}
	case errors.As(err, &ae):
		switch {
		case ae.Code == "DOCUMENT_TOO_LARGE":
			return http.StatusRequestEntityTooLarge, ErrorResponse{Error: ae.Message, Code: ae.Code}
		case errors.Is(err, common.ErrInvalidInput):
			return http.StatusBadRequest, ErrorResponse{Error: ae.Message, Code: ae.Code}
		}
		return http.StatusInternalServerError, ErrorResponse{Error: ae.Message, Code: ae.Code}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"}
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}

// grpcError maps a pipeline error to a gRPC status.
func grpcError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	code, body := describeError(err)
	msg := body.Error
	if body.Suggestion != "" {
		msg += ". " + body.Suggestion
	}
	switch code {
	case http.StatusUnprocessableEntity:
		return common.FailedPreconditionError(msg)
	case http.StatusTooManyRequests, http.StatusPaymentRequired, http.StatusRequestEntityTooLarge:
		return common.ResourceExhaustedError(msg)
	case http.StatusBadGateway:
		return common.UnavailableError(msg)
	case http.StatusGatewayTimeout:
		return status.Error(codes.DeadlineExceeded, msg)
	case http.StatusBadRequest:
		return common.InvalidArgumentError(msg)
	}
	return common.InternalError(msg)
}
