package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/metrics"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// Routes served by HTTPServer.
const (
	RouteText     = "/v1/drawings/text"
	RouteDocument = "/v1/drawings/document"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
)

const requestIDHeader = "X-Request-Id"

// HTTPServer exposes the pipeline as JSON over HTTP.
type HTTPServer struct {
	proc    *pipeline.Processor
	metrics *metrics.Registry
	logger  *slog.Logger
	maxBody int64
}

func NewHTTPServer(proc *pipeline.Processor, m *metrics.Registry, maxBody int64, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewRegistry()
	}
	if maxBody <= 0 {
		maxBody = 32 << 20
	}
	return &HTTPServer{proc: proc, metrics: m, logger: logger, maxBody: maxBody}
}

// Handler returns the routed handler with request ID and metrics middleware.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+RouteText, s.instrument(RouteText, http.HandlerFunc(s.handleText)))
	mux.Handle("POST "+RouteDocument, s.instrument(RouteDocument, http.HandlerFunc(s.handleDocument)))
	mux.HandleFunc("GET "+RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET "+RouteMetrics, s.metrics.Handler())
	return mux
}

func (s *HTTPServer) handleText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.proc.ProcessText(r.Context(), req.FileContent, constants.FileType(req.FileType))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewDrawingResponse(res))
}

func (s *HTTPServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.proc.ProcessDocument(r.Context(), req.DocumentBase64, req.FileName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewDrawingResponse(res))
}

// decode reads a bounded JSON body into dst and validates it. On failure the error
// response has been written.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if !errors.As(err, &mbe) {
			err = common.NewAppError("INVALID_JSON", fmt.Sprintf("request body is not valid JSON: %v", err), common.ErrInvalidInput)
		}
		s.fail(w, r, err)
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		s.fail(w, r, common.NewAppError("INVALID_JSON", "request body has trailing data", common.ErrInvalidInput))
		return false
	}
	if err := common.ValidateStruct(dst); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, body := describeError(err)
	lvl := slog.LevelWarn
	if code >= http.StatusInternalServerError && code != http.StatusBadGateway {
		lvl = slog.LevelError
	}
	s.logger.Log(r.Context(), lvl, "http.request.failed",
		"req_id", common.RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", code,
		"error", err,
	)
	writeJSON(w, code, body)
}

// instrument attaches a request ID and records request metrics.
func (s *HTTPServer) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := r.Header.Get(requestIDHeader); id != "" {
			ctx = common.WithRequestID(ctx, id)
		}
		ctx, id := common.EnsureRequestID(ctx)
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		elapsed := time.Since(start)
		s.metrics.RecordRequest("http", route, strconv.Itoa(rec.status), elapsed)
		s.logger.Info("http.request",
			"req_id", id,
			"method", r.Method,
			"path", route,
			"status", rec.status,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// writeJSON encodes v before touching the status line so an unencodable body becomes
// a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		b, _ = json.Marshal(ErrorResponse{Error: "encode response: " + err.Error(), Code: "ENCODE_FAILED"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}
