// Package classify labels drawing points as existing ground (NGL), design grade or unknown.
//
// The cascade per point is: an explicit kind from the source, then the layer name, then
// annotation text placed within the proximity radius. Layer and annotation matches are
// case-insensitive substring tests against the policy keyword sets; NGL wins a tie
// unless the policy says otherwise.
package classify

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// Result is the classified point set.
type Result struct {
	Points     []entity.Point
	NGL        int
	Design     int
	Unknown    int
	LastResort bool // every point was relabeled NGL
}

// Classifier applies a Policy. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	policy Policy
	ngl    []string
	design []string
}

// New folds the policy keywords once. Blank keywords are ignored.
func New(policy Policy) *Classifier {
	if policy.ProximityRadius <= 0 || !finite(policy.ProximityRadius) {
		policy.ProximityRadius = DefaultPolicy().ProximityRadius
	}
	return &Classifier{
		policy: policy,
		ngl:    foldAll(policy.NGLKeywords),
		design: foldAll(policy.DesignKeywords),
	}
}

// Policy returns the policy the classifier was built with.
func (c *Classifier) Policy() Policy { return c.policy }

// MatchText labels a single piece of text (layer name, annotation, model type string).
func (c *Classifier) MatchText(text string) entity.Kind {
	if text == "" {
		return entity.KindUnknown
	}
	folded := fold(text)
	isNGL := containsAny(folded, c.ngl)
	isDesign := containsAny(folded, c.design)
	return c.resolve(isNGL, isDesign)
}

func (c *Classifier) resolve(isNGL, isDesign bool) entity.Kind {
	switch {
	case isNGL && isDesign:
		if c.policy.PreferDesignOnTie {
			return entity.KindDesign
		}
		return entity.KindNGL
	case isNGL:
		return entity.KindNGL
	case isDesign:
		return entity.KindDesign
	default:
		return entity.KindUnknown
	}
}

// Classify labels a copy of points. The input slice is not modified.
func (c *Classifier) Classify(points []entity.Point, annotations []entity.TextAnnotation) Result {
	out := make([]entity.Point, len(points))
	copy(out, points)

	var idx *annotationIndex
	if len(annotations) > 0 {
		idx = newAnnotationIndex(annotations, c.policy.ProximityRadius)
	}

	res := Result{Points: out}
	for i := range out {
		out[i].Kind = c.classifyOne(out[i], idx)
	}

	if c.policy.FallbackAllNGL && len(out) > 0 && !hasLabeled(out) {
		for i := range out {
			out[i].Kind = entity.KindNGL
		}
		res.LastResort = true
	}

	for _, p := range out {
		switch p.Kind {
		case entity.KindNGL:
			res.NGL++
		case entity.KindDesign:
			res.Design++
		default:
			res.Unknown++
		}
	}
	return res
}

func (c *Classifier) classifyOne(p entity.Point, idx *annotationIndex) entity.Kind {
	if p.Explicit && (p.Kind == entity.KindNGL || p.Kind == entity.KindDesign) {
		return p.Kind
	}
	if k := c.MatchText(p.Layer); k != entity.KindUnknown {
		return k
	}
	if idx == nil {
		return entity.KindUnknown
	}

	var nearNGL, nearDesign bool
	idx.near(p.X, p.Y, func(a entity.TextAnnotation) bool {
		folded := fold(a.Content)
		if !nearNGL && containsAny(folded, c.ngl) {
			nearNGL = true
		}
		if !nearDesign && containsAny(folded, c.design) {
			nearDesign = true
		}
		return !(nearNGL && nearDesign)
	})
	return c.resolve(nearNGL, nearDesign)
}

func hasLabeled(points []entity.Point) bool {
	for _, p := range points {
		if p.Kind == entity.KindNGL || p.Kind == entity.KindDesign {
			return true
		}
	}
	return false
}

// fold uses a fresh Caser per call; cases.Caser is stateful and not safe to share.
func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out = append(out, fold(k))
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
