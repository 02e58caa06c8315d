package pipeline

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/levels-ingest/internal/classify"
	"github.com/joseph-ayodele/levels-ingest/internal/entity"
	"github.com/joseph-ayodele/levels-ingest/internal/terrain"
)

// Assembled is the canonical drawing plus its counts.
type Assembled struct {
	Drawing    entity.ParsedDrawing
	Summary    entity.Summary
	LastResort bool
}

// Assemble classifies raw's points and derives bounds, terrain statistics and the layer
// set. raw is not modified. Slices in the result are never nil so they encode as [].
func Assemble(raw *entity.RawExtraction, c *classify.Classifier) Assembled {
	if raw == nil {
		raw = &entity.RawExtraction{}
	}
	zeroIsUnset := c.Policy().ZeroElevationIsUnset

	res := c.Classify(raw.Points, raw.Annotations)
	points := res.Points
	if points == nil {
		points = []entity.Point{}
	}
	bounds := terrain.ComputeBounds(points)
	layers := collectLayers(raw)

	d := entity.ParsedDrawing{
		Points:      points,
		Polylines:   nonNil(raw.Polylines),
		Annotations: nonNil(raw.Annotations),
		Layers:      layers,
		Bounds:      bounds,
		Terrain:     terrain.Analyze(points, bounds, zeroIsUnset),
		CutFill:     nonNil(raw.CutFill),
	}
	return Assembled{
		Drawing: d,
		Summary: entity.Summary{
			NGLPoints:     res.NGL,
			DesignPoints:  res.Design,
			UnknownPoints: res.Unknown,
			TotalPoints:   len(points),
			Polylines:     len(d.Polylines),
			Annotations:   len(d.Annotations),
			LayerCount:    len(layers),
			Layers:        layers,
		},
		LastResort: res.LastResort,
	}
}

// collectLayers returns the sorted distinct non-blank layers of every entity.
func collectLayers(raw *entity.RawExtraction) []string {
	seen := make(map[string]struct{})
	add := func(l string) {
		if l = strings.TrimSpace(l); l != "" {
			seen[l] = struct{}{}
		}
	}
	for _, p := range raw.Points {
		add(p.Layer)
	}
	for _, a := range raw.Annotations {
		add(a.Layer)
	}
	for _, pl := range raw.Polylines {
		add(pl.Layer)
	}

	layers := make([]string, 0, len(seen))
	for l := range seen {
		layers = append(layers, l)
	}
	slices.Sort(layers)
	return layers
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
