// Package terrain computes the plan envelope and existing-ground elevation statistics
// of a classified point set.
package terrain

import (
	"math"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// ComputeBounds covers every point regardless of kind. Points with non-finite X or Y do
// not widen the plan extent; Z bounds use every set, finite elevation, 0.0 included.
// The zero-as-unset rule applies to Analyze only. An empty set yields the zero Bounds.
func ComputeBounds(points []entity.Point) entity.Bounds {
	inf := math.Inf(1)
	b := entity.Bounds{MinX: inf, MaxX: -inf, MinY: inf, MaxY: -inf, MinZ: inf, MaxZ: -inf}
	var hasXY, hasZ bool
	for _, p := range points {
		if finite(p.X) && finite(p.Y) {
			hasXY = true
			b.MinX, b.MaxX = math.Min(b.MinX, p.X), math.Max(b.MaxX, p.X)
			b.MinY, b.MaxY = math.Min(b.MinY, p.Y), math.Max(b.MaxY, p.Y)
		}
		if z, ok := p.Elevation(); ok {
			hasZ = true
			b.MinZ, b.MaxZ = math.Min(b.MinZ, z), math.Max(b.MaxZ, z)
		}
	}
	if !hasXY {
		b.MinX, b.MaxX, b.MinY, b.MaxY = 0, 0, 0, 0
	}
	if !hasZ {
		b.MinZ, b.MaxZ = 0, 0
	}
	return b
}

// Analyze summarizes NGL elevations. It returns nil when no NGL point carries a usable
// elevation; callers must read that as "no terrain data", not as a flat site at zero.
// Derived values that overflow (range, area) are reported as 0.
func Analyze(points []entity.Point, bounds entity.Bounds, zeroIsUnset bool) *entity.TerrainAnalysis {
	var (
		count  int
		valid  int
		avg    float64
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for _, p := range points {
		if p.Kind != entity.KindNGL {
			continue
		}
		count++
		z, ok := elevation(p, zeroIsUnset)
		if !ok {
			continue
		}
		valid++
		// running mean; a plain sum overflows for elevations near MaxFloat64
		avg += z/float64(valid) - avg/float64(valid)
		lo, hi = math.Min(lo, z), math.Max(hi, z)
	}
	if valid == 0 {
		return nil
	}
	return &entity.TerrainAnalysis{
		MinElevation:   lo,
		MaxElevation:   hi,
		AvgElevation:   finiteOrZero(avg),
		ElevationRange: finiteOrZero(hi - lo),
		PointCount:     count,
		EstimatedArea:  finiteOrZero(bounds.Width() * bounds.Height()),
	}
}

func elevation(p entity.Point, zeroIsUnset bool) (float64, bool) {
	z, ok := p.Elevation()
	if !ok || (zeroIsUnset && z == 0) {
		return 0, false
	}
	return z, true
}

func finiteOrZero(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
