package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/metrics"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

// DrawingServiceName is the fully-qualified gRPC service name.
const DrawingServiceName = "levels.v1.DrawingService"

const (
	methodParseText       = "/" + DrawingServiceName + "/ParseText"
	methodAnalyzeDocument = "/" + DrawingServiceName + "/AnalyzeDocument"
)

// DrawingServiceServer carries the HTTP JSON shapes inside google.protobuf.Struct.
type DrawingServiceServer interface {
	ParseText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// DrawingServiceDesc registers a DrawingServiceServer with a grpc.Server.
var DrawingServiceDesc = grpc.ServiceDesc{
	ServiceName: DrawingServiceName,
	HandlerType: (*DrawingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ParseText", Handler: unaryHandler(methodParseText, DrawingServiceServer.ParseText)},
		{MethodName: "AnalyzeDocument", Handler: unaryHandler(methodAnalyzeDocument, DrawingServiceServer.AnalyzeDocument)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "levels/v1/drawings.proto",
}

func unaryHandler(fullMethod string, call func(DrawingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DrawingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DrawingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DrawingService implements DrawingServiceServer over the pipeline.
type DrawingService struct {
	proc   *pipeline.Processor
	logger *slog.Logger
}

var _ DrawingServiceServer = (*DrawingService)(nil)

func NewDrawingService(proc *pipeline.Processor, logger *slog.Logger) *DrawingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DrawingService{proc: proc, logger: logger}
}

func (s *DrawingService) ParseText(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req TextRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	res, err := s.proc.ProcessText(ctx, req.FileContent, constants.FileType(req.FileType))
	if err != nil {
		s.logger.Warn("grpc.parse_text.failed", "req_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, grpcError(err)
	}
	return encodeStruct(NewDrawingResponse(res))
}

func (s *DrawingService) AnalyzeDocument(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req DocumentRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}
	res, err := s.proc.ProcessDocument(ctx, req.DocumentBase64, req.FileName)
	if err != nil {
		s.logger.Warn("grpc.analyze_document.failed", "req_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, grpcError(err)
	}
	return encodeStruct(NewDrawingResponse(res))
}

func decodeStruct(in *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return common.InvalidArgumentErrorf("decode request: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return common.InvalidArgumentErrorf("decode request: %v", err)
	}
	return common.ValidateAndReturnError(dst)
}

func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// UnaryInterceptor attaches a request ID (from x-request-id metadata when present) and
// records request metrics.
func UnaryInterceptor(m *metrics.Registry, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, id := common.EnsureRequestID(ctx)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		elapsed := time.Since(start)
		if m != nil {
			m.RecordRequest("grpc", info.FullMethod, code.String(), elapsed)
		}
		logger.Info("grpc.request",
			"req_id", id,
			"method", info.FullMethod,
			"code", code.String(),
			"elapsed_ms", elapsed.Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer builds a server with the drawing service, health and reflection
// registered. The returned health server reports SERVING.
func NewGRPCServer(svc DrawingServiceServer, m *metrics.Registry, maxBody int, logger *slog.Logger) (*grpc.Server, *health.Server) {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryInterceptor(m, logger))}
	if maxBody > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxBody))
	}
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&DrawingServiceDesc, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	// Set the service as serving (empty string means overall server health)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(DrawingServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(gs)
	return gs, hs
}

// DrawingServiceClient calls a remote DrawingService.
type DrawingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDrawingServiceClient(cc grpc.ClientConnInterface) *DrawingServiceClient {
	return &DrawingServiceClient{cc: cc}
}

func (c *DrawingServiceClient) ParseText(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodParseText, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DrawingServiceClient) AnalyzeDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodAnalyzeDocument, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
