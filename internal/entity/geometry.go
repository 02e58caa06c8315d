package entity

import "encoding/json"

// TextAnnotation is free text placed on the drawing.
type TextAnnotation struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Layer   string  `json:"layer,omitempty"`
}

// MarshalJSON writes non-finite coordinates as null.
func (a TextAnnotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content string   `json:"content"`
		X       *float64 `json:"x"`
		Y       *float64 `json:"y"`
		Layer   string   `json:"layer,omitempty"`
	}{a.Content, finiteOrNil(a.X), finiteOrNil(a.Y), a.Layer})
}

// Vertex is one polyline corner.
type Vertex struct {
	X float64
	Y float64
	Z float64
}

// MarshalJSON writes non-finite coordinates as null.
func (v Vertex) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
		Z *float64 `json:"z"`
	}{finiteOrNil(v.X), finiteOrNil(v.Y), finiteOrNil(v.Z)})
}

// Polyline is an ordered vertex chain. LINE entities become open 2-vertex polylines.
type Polyline struct {
	Vertices []Vertex `json:"vertices"`
	Layer    string   `json:"layer"`
	Closed   bool     `json:"closed"`
}

// Bounds is the plan/elevation envelope of every point in a drawing.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// Width is the X extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height is the Y extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// TerrainAnalysis summarizes existing-ground elevations.
type TerrainAnalysis struct {
	MinElevation   float64 `json:"minElevation"`
	MaxElevation   float64 `json:"maxElevation"`
	AvgElevation   float64 `json:"avgElevation"`
	ElevationRange float64 `json:"elevationRange"`
	PointCount     int     `json:"pointCount"`
	EstimatedArea  float64 `json:"estimatedArea"`
}

// CutFill pairs an existing and a design level at one location.
// Delta is FGL - NGL: positive means fill, negative means cut.
type CutFill struct {
	PointID string  `json:"pointId"`
	NGL     float64 `json:"ngl"`
	FGL     float64 `json:"fgl"`
	Delta   float64 `json:"delta"`
}

// NewCutFill builds a CutFill record with its delta.
func NewCutFill(pointID string, ngl, fgl float64) CutFill {
	return CutFill{PointID: pointID, NGL: ngl, FGL: fgl, Delta: fgl - ngl}
}
