package entity

import (
	"encoding/json"
	"math"
)

// Kind labels a point as existing ground, design grade, or unknown.
type Kind string

const (
	KindNGL     Kind = "NGL"
	KindDesign  Kind = "Design"
	KindUnknown Kind = "Unknown"
)

// Point sources.
const (
	SourceDXF        = "dxf"
	SourceStructured = "structured"
	SourceLevelTable = "levelTable"
	SourceRegex      = "regex"
)

// Point is a single spot level. Z is nil when the source carried no elevation.
type Point struct {
	ID    string   `json:"id"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Z     *float64 `json:"z"`
	Layer string   `json:"layer,omitempty"`
	Label string   `json:"label,omitempty"`
	Kind  Kind     `json:"kind"`

	Source string `json:"source,omitempty"`

	// Explicit is set when the source itself stated the kind (e.g. a model "type" field).
	Explicit bool `json:"-"`
}

// Elevation returns the point's elevation and whether it is set and finite.
func (p Point) Elevation() (float64, bool) {
	if p.Z == nil || !isFinite(*p.Z) {
		return 0, false
	}
	return *p.Z, true
}

// MarshalJSON writes a non-finite elevation as null.
func (p Point) MarshalJSON() ([]byte, error) {
	type alias Point
	out := struct {
		alias
		Z *float64 `json:"z"`
	}{alias: alias(p)}
	if z, ok := p.Elevation(); ok {
		out.Z = &z
	}
	return json.Marshal(out)
}

// Float returns a pointer to v; handy for literal elevations.
func Float(v float64) *float64 { return &v }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}
