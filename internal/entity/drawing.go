package entity

import (
	"fmt"
	"strings"
)

// RawExtraction owns every entity produced by one front-end pass. Points are appended
// through AddPoint so IDs stay unique regardless of how many passes contributed.
type RawExtraction struct {
	Points      []Point
	Annotations []TextAnnotation
	Polylines   []Polyline
	CutFill     []CutFill

	ids map[string]struct{}
}

// AddPoint appends p and returns its final ID. Points without an ID get one derived
// from their arena index; a repeated source ID gets a numeric suffix.
func (r *RawExtraction) AddPoint(p Point) string {
	if r.ids == nil {
		r.ids = make(map[string]struct{}, len(r.Points)+1)
		for _, existing := range r.Points {
			r.ids[existing.ID] = struct{}{}
		}
	}
	base := strings.TrimSpace(p.ID)
	if base == "" {
		base = fmt.Sprintf("P%d", len(r.Points)+1)
	}
	id := base
	for n := 2; ; n++ {
		if _, taken := r.ids[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	r.ids[id] = struct{}{}
	p.ID = id
	if p.Kind == "" {
		p.Kind = KindUnknown
	}
	r.Points = append(r.Points, p)
	return id
}

// AddAnnotation appends a text annotation.
func (r *RawExtraction) AddAnnotation(a TextAnnotation) {
	r.Annotations = append(r.Annotations, a)
}

// AddPolyline appends a polyline.
func (r *RawExtraction) AddPolyline(pl Polyline) {
	r.Polylines = append(r.Polylines, pl)
}

// AddCutFill appends a cut/fill record.
func (r *RawExtraction) AddCutFill(cf CutFill) {
	r.CutFill = append(r.CutFill, cf)
}

// Empty reports whether nothing at all was extracted.
func (r *RawExtraction) Empty() bool {
	return r == nil || (len(r.Points) == 0 && len(r.Annotations) == 0 && len(r.Polylines) == 0)
}

// ParsedDrawing is the canonical output shared by both ingestion front-ends.
type ParsedDrawing struct {
	Points      []Point          `json:"points"`
	Polylines   []Polyline       `json:"polylines"`
	Annotations []TextAnnotation `json:"annotations"`
	Layers      []string         `json:"layers"`
	Bounds      Bounds           `json:"bounds"`
	Terrain     *TerrainAnalysis `json:"terrain"`
	CutFill     []CutFill        `json:"cutFill"`
}

// Summary counts what a ParsedDrawing contains.
type Summary struct {
	NGLPoints     int      `json:"nglPoints"`
	DesignPoints  int      `json:"designPoints"`
	UnknownPoints int      `json:"unknownPoints"`
	TotalPoints   int      `json:"totalPoints"`
	Polylines     int      `json:"polylines"`
	Annotations   int      `json:"annotations"`
	LayerCount    int      `json:"layerCount"`
	Layers        []string `json:"layers"`
}
