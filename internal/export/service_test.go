package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

func sampleDrawing() Drawing {
	return Drawing{
		Name:    "site-a.dxf",
		Outcome: "STRUCTURED",
		Drawing: entity.ParsedDrawing{
			Points: []entity.Point{
				{ID: "P1", X: 1, Y: 2, Z: entity.Float(100.5), Kind: entity.KindNGL, Layer: "EG", Source: entity.SourceDXF},
				{ID: "P2", X: 3, Y: 4, Kind: entity.KindUnknown},
			},
			CutFill: []entity.CutFill{entity.NewCutFill("T1", 100, 99.25)},
			Terrain: &entity.TerrainAnalysis{MinElevation: 100.5, MaxElevation: 100.5, AvgElevation: 100.5, PointCount: 1, EstimatedArea: 4},
		},
		Summary: entity.Summary{NGLPoints: 1, UnknownPoints: 1, TotalPoints: 2, LayerCount: 1, Layers: []string{"EG"}},
	}
}

func TestDrawingsXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	b, err := svc.DrawingsXLSX(context.Background(), []Drawing{sampleDrawing(), {Name: "empty.pdf", Outcome: "EMPTY"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetPoints, SheetCutFill, SheetSummary}, f.GetSheetList())

	points, err := f.GetRows(SheetPoints)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "Point ID", points[0][1])
	assert.Equal(t, []string{"site-a.dxf", "P1", "1", "2", "100.5", "NGL", "EG", "", "dxf"}, points[1])
	assert.Equal(t, "", points[2][4], "unset elevation stays blank")

	cut, err := f.GetRows(SheetCutFill)
	require.NoError(t, err)
	require.Len(t, cut, 2)
	assert.Equal(t, []string{"site-a.dxf", "T1", "100", "99.25", "-0.75", "cut"}, cut[1])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "EG", summary[1][8])
	assert.Equal(t, "4", summary[1][12])
	assert.Equal(t, []string{"empty.pdf", "EMPTY", "0", "0", "0", "0", "0", "0"}, summary[2])
}

func TestDrawingsXLSXCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService(nil).DrawingsXLSX(ctx, []Drawing{sampleDrawing()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCutOrFill(t *testing.T) {
	assert.Equal(t, "fill", cutOrFill(0.2))
	assert.Equal(t, "cut", cutOrFill(-0.2))
	assert.Equal(t, "level", cutOrFill(0))
}
