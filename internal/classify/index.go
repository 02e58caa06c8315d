package classify

import (
	"math"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// maxCell keeps cell coordinates well inside int64.
const maxCell = 1 << 52

type cellKey struct{ cx, cy int64 }

// annotationIndex buckets annotations into square cells one radius wide, so every
// annotation strictly within the radius of a point sits in the point's cell or one of
// its eight neighbours.
type annotationIndex struct {
	radius float64
	cells  map[cellKey][]int
	far    []int // coordinates too large to bucket; always scanned
	anns   []entity.TextAnnotation
}

func newAnnotationIndex(anns []entity.TextAnnotation, radius float64) *annotationIndex {
	idx := &annotationIndex{radius: radius, cells: make(map[cellKey][]int), anns: anns}
	for i, a := range anns {
		if !finite(a.X) || !finite(a.Y) {
			continue
		}
		key, ok := idx.key(a.X, a.Y)
		if !ok {
			idx.far = append(idx.far, i)
			continue
		}
		idx.cells[key] = append(idx.cells[key], i)
	}
	return idx
}

func (idx *annotationIndex) key(x, y float64) (cellKey, bool) {
	cx, cy := math.Floor(x/idx.radius), math.Floor(y/idx.radius)
	if math.Abs(cx) > maxCell || math.Abs(cy) > maxCell {
		return cellKey{}, false
	}
	return cellKey{int64(cx), int64(cy)}, true
}

// near calls fn for every annotation whose X and Y are each strictly within the radius
// of (x, y). Iteration stops when fn returns false.
func (idx *annotationIndex) near(x, y float64, fn func(entity.TextAnnotation) bool) {
	if !finite(x) || !finite(y) {
		return
	}
	visit := func(i int) bool {
		a := idx.anns[i]
		if math.Abs(a.X-x) < idx.radius && math.Abs(a.Y-y) < idx.radius {
			return fn(a)
		}
		return true
	}
	for _, i := range idx.far {
		if !visit(i) {
			return
		}
	}
	center, ok := idx.key(x, y)
	if !ok {
		// The point itself is out of bucket range; fall back to a full scan.
		for _, bucket := range idx.cells {
			for _, i := range bucket {
				if !visit(i) {
					return
				}
			}
		}
		return
	}
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range idx.cells[cellKey{center.cx + dx, center.cy + dy}] {
				if !visit(i) {
					return
				}
			}
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
