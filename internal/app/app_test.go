package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/levels-ingest/internal/common"
)

func TestNewProcessorWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := common.LoadConfig()

	proc, err := NewProcessor(cfg, nil, NewLogger(false, slog.LevelError))
	require.NoError(t, err)
	assert.Nil(t, proc.Model)
	assert.Equal(t, int64(20<<20), proc.MaxDocumentBytes)
	assert.Equal(t, 5.0, proc.Classifier.Policy().ProximityRadius)
}

func TestNewProcessorLoadsPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proximityRadius: 12\npreferDesignOnTie: true\n"), 0o644))
	t.Setenv("LEVELS_POLICY_FILE", path)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	proc, err := NewProcessor(common.LoadConfig(), nil, NewLogger(true, slog.LevelError))
	require.NoError(t, err)
	assert.NotNil(t, proc.Model)
	assert.Equal(t, 12.0, proc.Classifier.Policy().ProximityRadius)
	assert.True(t, proc.Classifier.Policy().PreferDesignOnTie)
}

func TestNewProcessorBadPolicy(t *testing.T) {
	t.Setenv("LEVELS_POLICY_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := NewProcessor(common.LoadConfig(), nil, NewLogger(false, slog.LevelError))
	assert.Error(t, err)
}
