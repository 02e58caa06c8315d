package terrain

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

func ngl(x, y float64, z *float64) entity.Point {
	return entity.Point{X: x, Y: y, Z: z, Kind: entity.KindNGL}
}

func TestAnalyzeStats(t *testing.T) {
	points := []entity.Point{
		ngl(0, 0, entity.Float(10)),
		ngl(1, 0, entity.Float(20)),
		ngl(2, 0, entity.Float(30)),
	}

	ta := Analyze(points, ComputeBounds(points), true)
	require.NotNil(t, ta)
	assert.InDelta(t, 10, ta.MinElevation, 1e-9)
	assert.InDelta(t, 30, ta.MaxElevation, 1e-9)
	assert.InDelta(t, 20, ta.AvgElevation, 1e-9)
	assert.InDelta(t, 20, ta.ElevationRange, 1e-9)
	assert.Equal(t, 3, ta.PointCount)
}

func TestAnalyzeIgnoresDesign(t *testing.T) {
	points := []entity.Point{
		ngl(0, 0, entity.Float(10)),
		{X: 5, Y: 5, Z: entity.Float(99), Kind: entity.KindDesign},
		{X: 6, Y: 6, Z: entity.Float(-3), Kind: entity.KindUnknown},
	}

	ta := Analyze(points, ComputeBounds(points), true)
	require.NotNil(t, ta)
	assert.InDelta(t, 10, ta.MaxElevation, 1e-9)
	assert.Equal(t, 1, ta.PointCount)
	assert.InDelta(t, 36, ta.EstimatedArea, 1e-9, "area covers every kind")
}

func TestZeroSentinel(t *testing.T) {
	points := []entity.Point{
		ngl(0, 0, entity.Float(0)),
		ngl(10, 10, entity.Float(12)),
		ngl(20, 5, nil),
		ngl(30, 0, entity.Float(math.NaN())),
	}
	b := ComputeBounds(points)
	assert.InDelta(t, 0, b.MinX, 1e-9)
	assert.InDelta(t, 30, b.MaxX, 1e-9)
	assert.InDelta(t, 0, b.MinZ, 1e-9, "a zero elevation still widens the bounds")
	assert.InDelta(t, 12, b.MaxZ, 1e-9)

	ta := Analyze(points, b, true)
	require.NotNil(t, ta)
	assert.InDelta(t, 12, ta.MinElevation, 1e-9)
	assert.InDelta(t, 12, ta.AvgElevation, 1e-9)
	assert.Equal(t, 4, ta.PointCount, "count is taken before filtering")
}

func TestZeroIsRealWhenPolicyOff(t *testing.T) {
	points := []entity.Point{ngl(0, 0, entity.Float(0)), ngl(1, 1, entity.Float(4))}

	ta := Analyze(points, ComputeBounds(points), false)
	require.NotNil(t, ta)
	assert.InDelta(t, 0, ta.MinElevation, 1e-9)
	assert.InDelta(t, 2, ta.AvgElevation, 1e-9)
}

func TestAnalyzeNilWithoutElevations(t *testing.T) {
	points := []entity.Point{ngl(0, 0, nil), ngl(1, 1, entity.Float(0))}
	assert.Nil(t, Analyze(points, ComputeBounds(points), true))
	assert.Nil(t, Analyze(nil, entity.Bounds{}, true))
}

func TestComputeBoundsEmpty(t *testing.T) {
	assert.Equal(t, entity.Bounds{}, ComputeBounds(nil))
}

func TestComputeBoundsSkipsNonFiniteXY(t *testing.T) {
	points := []entity.Point{
		{X: math.NaN(), Y: 100, Z: entity.Float(5)},
		{X: 2, Y: 3},
	}
	b := ComputeBounds(points)
	assert.Equal(t, entity.Bounds{MinX: 2, MaxX: 2, MinY: 3, MaxY: 3, MinZ: 5, MaxZ: 5}, b)
}

func TestEstimatedAreaProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("area of a [0,100]x[0,50] footprint is 5000", prop.ForAll(
		func(xs, ys []float64, zs []float64) bool {
			points := []entity.Point{
				ngl(0, 0, entity.Float(1)),
				{X: 100, Y: 50, Kind: entity.KindDesign},
			}
			for i := range xs {
				z := zs[i%len(zs)]
				points = append(points, ngl(xs[i], ys[i%len(ys)], &z))
			}
			ta := Analyze(points, ComputeBounds(points), true)
			return ta != nil && math.Abs(ta.EstimatedArea-5000) < 1e-9
		},
		gen.SliceOf(gen.Float64Range(0, 100)),
		gen.SliceOfN(3, gen.Float64Range(0, 50)),
		gen.SliceOfN(3, gen.Float64Range(-10, 500)),
	))

	properties.TestingRun(t)
}

func TestAnalyzeOverflowStaysFinite(t *testing.T) {
	points := []entity.Point{
		ngl(-1e308, -1e308, entity.Float(5)),
		ngl(1e308, 1e308, entity.Float(6)),
	}
	b := ComputeBounds(points)
	assert.Equal(t, -1e308, b.MinX)
	assert.Equal(t, 1e308, b.MaxY)

	ta := Analyze(points, b, true)
	require.NotNil(t, ta)
	assert.Zero(t, ta.EstimatedArea)
	assert.InDelta(t, 5.5, ta.AvgElevation, 1e-9)

	huge := []entity.Point{ngl(0, 0, entity.Float(math.MaxFloat64)), ngl(1, 1, entity.Float(-math.MaxFloat64))}
	ta = Analyze(huge, ComputeBounds(huge), true)
	require.NotNil(t, ta)
	assert.Zero(t, ta.ElevationRange)
	assert.False(t, math.IsInf(ta.AvgElevation, 0) || math.IsNaN(ta.AvgElevation))
}
