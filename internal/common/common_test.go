package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"LEVELS_HTTP_ADDR", "LEVELS_GRPC_ADDR", "LEVELS_MAX_BODY_BYTES", "OPENAI_API_KEY", "LEVELS_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, ":9090", cfg.Server.GRPCAddr)
	assert.EqualValues(t, 32<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.NoError(t, cfg.Validate(false))

	err := cfg.Validate(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LEVELS_HTTP_ADDR", "127.0.0.1:1")
	t.Setenv("LEVELS_MAX_BODY_BYTES", "1024")
	t.Setenv("OPENAI_TEMPERATURE", "0.4")
	t.Setenv("OPENAI_TIMEOUT", "5s")
	t.Setenv("LEVELS_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig()
	assert.Equal(t, "127.0.0.1:1", cfg.Server.HTTPAddr)
	assert.EqualValues(t, 1024, cfg.Server.MaxBodyBytes)
	assert.InDelta(t, 0.4, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "5s", cfg.LLM.Timeout.String())
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.NoError(t, cfg.Validate(true))
}

func TestValidateRejectsBadTemperature(t *testing.T) {
	cfg := LoadConfig()
	cfg.LLM.Temperature = 3
	require.Error(t, cfg.Validate(false))
}

type sample struct {
	FileType string `validate:"required,oneof=dxf dwg"`
	Content  string `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{FileType: "dxf", Content: "x"}))

	err := ValidateStruct(sample{FileType: "pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "FileType: must be one of [dxf dwg]")
	assert.Contains(t, err.Error(), "Content: is required")

	st, ok := status.FromError(ValidateAndReturnError(sample{}))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestUnsupportedFormatError(t *testing.T) {
	var err error = &UnsupportedFormatError{Format: "dwg", Suggestion: "export as DXF"}
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	var uf *UnsupportedFormatError
	require.True(t, errors.As(WrapError(err, "parse"), &uf))
	assert.Equal(t, "export as DXF", uf.Suggestion)
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)
}
