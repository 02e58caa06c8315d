package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/levels-ingest/constants"
	"github.com/joseph-ayodele/levels-ingest/internal/classify"
	"github.com/joseph-ayodele/levels-ingest/internal/common"
	"github.com/joseph-ayodele/levels-ingest/internal/pipeline"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dxf"), "")
	writeFile(t, filepath.Join(root, "b.PDF"), "")
	writeFile(t, filepath.Join(root, "sub", "c.png"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")
	writeFile(t, filepath.Join(root, ".hidden", "d.dxf"), "")
	writeFile(t, filepath.Join(root, ".e.dxf"), "")

	files, stats, err := ScanDirectory(root, nil, true)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		names = append(names, rel)
	}
	assert.Equal(t, []string{"a.dxf", "b.PDF", filepath.Join("sub", "c.png")}, names)
	assert.Equal(t, constants.SourceText, files[0].Source)
	assert.Equal(t, constants.SourceDocument, files[1].Source)
	assert.Equal(t, "pdf", files[1].Ext)
	assert.Equal(t, uint32(3), stats.Matched)

	files, _, err = ScanDirectory(root, []string{".DXF"}, false)
	require.NoError(t, err)
	assert.Len(t, files, 3, "hidden files included when not skipping")
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := ScanDirectory("  ", nil, true)
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	root := t.TempDir()
	dxf := filepath.Join(root, "site.dxf")
	writeFile(t, dxf, "0\nSECTION\n2\nENTITIES\n0\nPOINT\n8\nEG\n10\n1\n20\n2\n30\n50\n0\nENDSEC\n")
	dwg := filepath.Join(root, "site.dwg")
	writeFile(t, dwg, "AC1027")

	proc := pipeline.NewProcessor(slog.New(slog.NewTextHandler(io.Discard, nil)), classify.New(classify.DefaultPolicy()), nil, nil, 0)

	res, err := Process(context.Background(), proc, File{Path: dxf, Ext: "dxf", Source: constants.SourceText})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.NGLPoints)

	_, err = Process(context.Background(), proc, File{Path: dwg, Ext: "dwg", Source: constants.SourceText})
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))

	_, err = Process(context.Background(), proc, File{Path: filepath.Join(root, "missing.dxf"), Ext: "dxf", Source: constants.SourceText})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSourceForExt(t *testing.T) {
	s, ok := SourceForExt(".TIFF")
	assert.True(t, ok)
	assert.Equal(t, constants.SourceDocument, s)
	_, ok = SourceForExt("docx")
	assert.False(t, ok)
}
