package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// Sheet names in the exported workbook.
const (
	SheetPoints  = "Points"
	SheetCutFill = "CutFill"
	SheetSummary = "Summary"
)

// Drawing is one parsed file to export.
type Drawing struct {
	Name    string
	Outcome string
	Drawing entity.ParsedDrawing
	Summary entity.Summary
}

// Service produces XLSX workbooks from parsed drawings.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DrawingsXLSX returns a workbook (as bytes) with one row per point, per cut/fill pair
// and per drawing, across all drawings in order.
func (s *Service) DrawingsXLSX(ctx context.Context, drawings []Drawing) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetPoints); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCutFill, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}
	idx, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(idx)

	writeHeaders(f, SheetPoints, "File", "Point ID", "X", "Y", "Elevation", "Kind", "Layer", "Label", "Source")
	writeHeaders(f, SheetCutFill, "File", "Point ID", "NGL", "FGL", "Delta", "Cut/Fill")
	writeHeaders(f, SheetSummary, "File", "Outcome", "NGL Points", "Design Points", "Unknown Points",
		"Total Points", "Polylines", "Annotations", "Layers", "Min Elevation", "Max Elevation",
		"Avg Elevation", "Estimated Area")

	pointRow, cutRow := 2, 2
	for i, d := range drawings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, p := range d.Drawing.Points {
			var z any = ""
			if v, ok := p.Elevation(); ok {
				z = v
			}
			writeRow(f, SheetPoints, pointRow, d.Name, p.ID, p.X, p.Y, z, string(p.Kind), p.Layer, truncate(p.Label, 140), p.Source)
			pointRow++
		}

		for _, cf := range d.Drawing.CutFill {
			writeRow(f, SheetCutFill, cutRow, d.Name, cf.PointID, cf.NGL, cf.FGL, cf.Delta, cutOrFill(cf.Delta))
			cutRow++
		}

		sm := d.Summary
		cells := []any{d.Name, d.Outcome, sm.NGLPoints, sm.DesignPoints, sm.UnknownPoints,
			sm.TotalPoints, sm.Polylines, sm.Annotations, strings.Join(sm.Layers, ", ")}
		if t := d.Drawing.Terrain; t != nil {
			cells = append(cells, t.MinElevation, t.MaxElevation, t.AvgElevation, t.EstimatedArea)
		}
		writeRow(f, SheetSummary, i+2, cells...)
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetPoints, "A", "A", 32)  // file
	_ = f.SetColWidth(SheetPoints, "B", "B", 16)  // id
	_ = f.SetColWidth(SheetPoints, "G", "H", 28)  // layer, label
	_ = f.SetColWidth(SheetCutFill, "A", "A", 32) // file
	_ = f.SetColWidth(SheetSummary, "A", "B", 32) // file, outcome
	_ = f.SetColWidth(SheetSummary, "I", "I", 48) // layers
	_ = f.SetColWidth(SheetSummary, "J", "M", 16) // terrain

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"drawings", len(drawings),
		"points", pointRow-2,
		"cut_fill", cutRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers ...string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func cutOrFill(delta float64) string {
	switch {
	case delta > 0:
		return "fill"
	case delta < 0:
		return "cut"
	default:
		return "level"
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
