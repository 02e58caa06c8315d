package llm

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// Expand turns a validated extraction into arena entities. Points keep the model's
// type as an explicit kind when resolver recognizes it. Each level-table row becomes
// an NGL and a Design point at one location plus a cut/fill record when both levels
// are present. synthesized reports whether any coordinate had to be invented.
func (x *DrawingExtraction) Expand(resolver KindResolver) (out *entity.RawExtraction, synthesized bool) {
	out = &entity.RawExtraction{}
	x.expandInto(out, resolver, &coordinates{}, &synthesized)
	return out, synthesized
}

func (x *DrawingExtraction) expandInto(out *entity.RawExtraction, resolver KindResolver, coords *coordinates, synthesized *bool) {
	located := make(map[string][2]float64, len(x.Points))

	place := func(px, py *float64) (float64, float64) {
		if usable(px) && usable(py) {
			return *px, *py
		}
		*synthesized = true
		return coords.next()
	}

	for _, p := range x.Points {
		kind := entity.KindUnknown
		if resolver != nil && p.Type != "" {
			kind = resolver.MatchText(p.Type)
		}
		px, py := place(p.X, p.Y)
		var z *float64
		if usable(p.Z) {
			z = entity.Float(*p.Z)
		}
		out.AddPoint(entity.Point{
			ID:       p.ID,
			X:        px,
			Y:        py,
			Z:        z,
			Label:    firstNonEmpty(p.Label, p.Type),
			Kind:     kind,
			Explicit: kind != entity.KindUnknown,
			Source:   entity.SourceStructured,
		})
		if key := strings.TrimSpace(p.ID); key != "" {
			if _, seen := located[key]; !seen {
				located[key] = [2]float64{px, py}
			}
		}
	}

	for _, row := range x.LevelTable {
		if !usable(row.NGL) && !usable(row.FGL) {
			continue
		}
		var rx, ry float64
		switch loc, ok := located[strings.TrimSpace(row.PointID)]; {
		case usable(row.X) && usable(row.Y):
			rx, ry = *row.X, *row.Y
		case ok:
			rx, ry = loc[0], loc[1]
		default:
			*synthesized = true
			rx, ry = coords.next()
		}
		if usable(row.NGL) {
			out.AddPoint(entity.Point{ID: row.PointID + "-NGL", X: rx, Y: ry, Z: entity.Float(*row.NGL), Kind: entity.KindNGL, Explicit: true, Label: row.PointID, Source: entity.SourceLevelTable})
		}
		if usable(row.FGL) {
			out.AddPoint(entity.Point{ID: row.PointID + "-FGL", X: rx, Y: ry, Z: entity.Float(*row.FGL), Kind: entity.KindDesign, Explicit: true, Label: row.PointID, Source: entity.SourceLevelTable})
		}
		if usable(row.NGL) && usable(row.FGL) {
			out.AddCutFill(entity.NewCutFill(row.PointID, *row.NGL, *row.FGL))
		}
	}
}

// HasGrid reports whether the model saw a coordinate grid.
func (x *DrawingExtraction) HasGrid() bool {
	return x != nil && x.GridReference != nil && x.GridReference.Detected
}

// HasLevelTable reports whether a level table was read.
func (x *DrawingExtraction) HasLevelTable() bool {
	return x != nil && len(x.LevelTable) > 0
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
