package classify

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

func pt(layer string, x, y float64) entity.Point {
	return entity.Point{X: x, Y: y, Layer: layer, Kind: entity.KindUnknown}
}

func nan() float64 { return math.NaN() }

func abs(v float64) float64 { return math.Abs(v) }

func TestClassifyByLayer(t *testing.T) {
	var points []entity.Point
	for i := 0; i < 4; i++ {
		points = append(points, pt("NGL", float64(i), 0))
	}
	for i := 0; i < 3; i++ {
		points = append(points, pt("FGL", float64(i), 10))
	}

	res := New(DefaultPolicy()).Classify(points, nil)
	assert.Equal(t, 4, res.NGL)
	assert.Equal(t, 3, res.Design)
	assert.Equal(t, 0, res.Unknown)
	assert.False(t, res.LastResort)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	points := []entity.Point{pt("NGL", 0, 0)}
	New(DefaultPolicy()).Classify(points, nil)
	assert.Equal(t, entity.KindUnknown, points[0].Kind)
}

func TestLayerTieGoesToNGL(t *testing.T) {
	c := New(DefaultPolicy())
	assert.Equal(t, entity.KindNGL, c.MatchText("EXISTING_VS_DESIGN"))

	p := DefaultPolicy()
	p.PreferDesignOnTie = true
	assert.Equal(t, entity.KindDesign, New(p).MatchText("EXISTING_VS_DESIGN"))
}

func TestMatchTextCaseInsensitive(t *testing.T) {
	c := New(DefaultPolicy())
	assert.Equal(t, entity.KindNGL, c.MatchText("Natural Surface"))
	assert.Equal(t, entity.KindDesign, c.MatchText("pRoPoSeD"))
	assert.Equal(t, entity.KindUnknown, c.MatchText("KERB"))
	assert.Equal(t, entity.KindUnknown, c.MatchText(""))
}

func TestExplicitKindWins(t *testing.T) {
	p := pt("NGL", 0, 0)
	p.Kind = entity.KindDesign
	p.Explicit = true

	res := New(DefaultPolicy()).Classify([]entity.Point{p}, nil)
	assert.Equal(t, entity.KindDesign, res.Points[0].Kind)
}

func TestExplicitUnknownFallsThrough(t *testing.T) {
	p := pt("FGL", 0, 0)
	p.Explicit = true

	res := New(DefaultPolicy()).Classify([]entity.Point{p}, nil)
	assert.Equal(t, entity.KindDesign, res.Points[0].Kind)
}

func TestProximityAnnotations(t *testing.T) {
	c := New(DefaultPolicy())
	anns := []entity.TextAnnotation{
		{Content: "Existing level", X: 100, Y: 100},
		{Content: "proposed", X: 200, Y: 200},
	}
	points := []entity.Point{
		pt("A", 103, 96),  // within 5 on both axes of the NGL note
		pt("A", 204, 199), // near the design note
		pt("A", 105, 100), // exactly 5 away on X: not near
		pt("A", 150, 150), // nothing near
	}

	res := c.Classify(points, anns)
	assert.Equal(t, entity.KindNGL, res.Points[0].Kind)
	assert.Equal(t, entity.KindDesign, res.Points[1].Kind)
	assert.Equal(t, entity.KindUnknown, res.Points[2].Kind)
	assert.Equal(t, entity.KindUnknown, res.Points[3].Kind)
	assert.False(t, res.LastResort)
}

func TestProximityIsPerAxisNotEuclidean(t *testing.T) {
	// (4.9, 4.9) is ~6.9 away in a straight line but within 5 on each axis.
	res := New(DefaultPolicy()).Classify(
		[]entity.Point{pt("A", 4.9, 4.9), pt("B", 100, 100)},
		[]entity.TextAnnotation{{Content: "FGL", X: 0, Y: 0}},
	)
	assert.Equal(t, entity.KindDesign, res.Points[0].Kind)
}

func TestProximityNGLBeatsDesign(t *testing.T) {
	anns := []entity.TextAnnotation{
		{Content: "FGL 101.2", X: 1, Y: 1},
		{Content: "NGL 100.1", X: -1, Y: -1},
	}
	res := New(DefaultPolicy()).Classify([]entity.Point{pt("", 0, 0), pt("", 50, 50)}, anns)
	assert.Equal(t, entity.KindNGL, res.Points[0].Kind)
}

func TestProximityAcrossCellBoundaries(t *testing.T) {
	// Radius 5 gives cells [0,5), [5,10)...; the note sits in the neighbouring cell.
	anns := []entity.TextAnnotation{{Content: "design", X: 9.9, Y: -0.1}}
	res := New(DefaultPolicy()).Classify([]entity.Point{pt("", 5.1, 0.1), pt("NGL", 0, 0)}, anns)
	assert.Equal(t, entity.KindDesign, res.Points[0].Kind)
}

func TestProximityIgnoresNonFiniteAnnotations(t *testing.T) {
	anns := []entity.TextAnnotation{{Content: "NGL", X: nan(), Y: 0}}
	res := New(DefaultPolicy()).Classify([]entity.Point{pt("", 0, 0), pt("FGL", 1, 1)}, anns)
	assert.Equal(t, entity.KindUnknown, res.Points[0].Kind)
}

func TestProximityMatchesFullScan(t *testing.T) {
	c := New(DefaultPolicy())
	var anns []entity.TextAnnotation
	for i := 0; i < 40; i++ {
		content := "note"
		switch i % 3 {
		case 0:
			content = "NGL"
		case 1:
			content = "FGL"
		}
		anns = append(anns, entity.TextAnnotation{Content: content, X: float64(i*7%53) - 20, Y: float64(i*11%47) - 20})
	}
	var points []entity.Point
	for i := 0; i < 60; i++ {
		points = append(points, pt("", float64(i*13%61)-25, float64(i*17%59)-25))
	}

	res := c.Classify(points, anns)
	for i, p := range points {
		var nearNGL, nearDesign bool
		for _, a := range anns {
			if abs(a.X-p.X) < 5 && abs(a.Y-p.Y) < 5 {
				nearNGL = nearNGL || c.MatchText(a.Content) == entity.KindNGL
				nearDesign = nearDesign || c.MatchText(a.Content) == entity.KindDesign
			}
		}
		want := c.resolve(nearNGL, nearDesign)
		if res.LastResort {
			want = entity.KindNGL
		}
		assert.Equal(t, want, res.Points[i].Kind, "point %d", i)
	}
}

func TestLastResortAllNGL(t *testing.T) {
	points := []entity.Point{pt("KERB", 0, 0), pt("WALL", 10, 10), pt("", 20, 20)}

	res := New(DefaultPolicy()).Classify(points, []entity.TextAnnotation{{Content: "scale 1:200", X: 0, Y: 0}})
	assert.True(t, res.LastResort)
	assert.Equal(t, 3, res.NGL)
	assert.Equal(t, 0, res.Design)
	for _, p := range res.Points {
		assert.Equal(t, entity.KindNGL, p.Kind)
	}
}

func TestLastResortDisabled(t *testing.T) {
	p := DefaultPolicy()
	p.FallbackAllNGL = false

	res := New(p).Classify([]entity.Point{pt("KERB", 0, 0)}, nil)
	assert.False(t, res.LastResort)
	assert.Equal(t, 1, res.Unknown)
}

func TestLastResortNotAppliedWhenAnyLabeled(t *testing.T) {
	res := New(DefaultPolicy()).Classify([]entity.Point{pt("FGL", 0, 0), pt("KERB", 50, 50)}, nil)
	assert.False(t, res.LastResort)
	assert.Equal(t, 1, res.Design)
	assert.Equal(t, 1, res.Unknown)
}

func TestClassifyEmpty(t *testing.T) {
	res := New(DefaultPolicy()).Classify(nil, nil)
	assert.Empty(t, res.Points)
	assert.False(t, res.LastResort)
}

func TestCustomKeywords(t *testing.T) {
	p := DefaultPolicy()
	p.NGLKeywords = []string{"OGL"}
	p.DesignKeywords = []string{"RL"}
	c := New(p)

	assert.Equal(t, entity.KindNGL, c.MatchText("ogl spot"))
	assert.Equal(t, entity.KindDesign, c.MatchText("RL 12.0"))
	assert.Equal(t, entity.KindUnknown, c.MatchText("NGL"))
}

func TestClassifyDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	layers := gen.OneConstOf("NGL", "FGL", "EXISTING", "DESIGN", "KERB", "0", "")
	texts := gen.OneConstOf("NGL", "proposed", "scale", "EG 10.2", "")

	properties.Property("classifying twice yields identical kinds", prop.ForAll(
		func(ls []string, ts []string, xs []float64) bool {
			var points []entity.Point
			for i, l := range ls {
				x := xs[i%len(xs)]
				points = append(points, pt(l, x, float64(i)))
			}
			var anns []entity.TextAnnotation
			for i, s := range ts {
				anns = append(anns, entity.TextAnnotation{Content: s, X: xs[(i+1)%len(xs)], Y: float64(i)})
			}

			c := New(DefaultPolicy())
			a := c.Classify(points, anns)
			b := c.Classify(points, anns)
			if len(a.Points) != len(b.Points) {
				return false
			}
			for i := range a.Points {
				if a.Points[i].Kind != b.Points[i].Kind {
					return false
				}
			}
			return a.NGL+a.Design+a.Unknown == len(points)
		},
		gen.SliceOf(layers),
		gen.SliceOf(texts),
		gen.SliceOfN(5, gen.Float64Range(-50, 50)),
	))

	properties.TestingRun(t)
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nglKeywords: [ogl, eg]\nproximityRadius: 2.5\npreferDesignOnTie: true\n"), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ogl", "eg"}, p.NGLKeywords)
	assert.Equal(t, DefaultPolicy().DesignKeywords, p.DesignKeywords)
	assert.InDelta(t, 2.5, p.ProximityRadius, 1e-9)
	assert.True(t, p.PreferDesignOnTie)
	assert.True(t, p.ZeroElevationIsUnset, "unset fields keep defaults")
	assert.True(t, p.FallbackAllNGL)
}

func TestLoadPolicyRejectsBadRadius(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proximityRadius: -1\n"), 0o644))

	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proximityRadius")
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateBlankKeyword(t *testing.T) {
	p := DefaultPolicy()
	p.DesignKeywords = append(p.DesignKeywords, "  ")
	require.Error(t, p.Validate())
	require.NoError(t, DefaultPolicy().Validate())
}

func ExampleClassifier_MatchText() {
	c := New(DefaultPolicy())
	fmt.Println(c.MatchText("EG_SPOTS"), c.MatchText("FG-LEVELS"), c.MatchText("TITLE"))
	// Output: NGL Design Unknown
}
