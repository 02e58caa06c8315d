package constants

// Default keyword sets used to label points from layer names, annotation text and
// model-supplied type strings. Matching is a case-insensitive substring test.
var (
	DefaultNGLKeywords    = []string{"ngl", "natural", "existing", "eg", "ground", "topo", "survey"}
	DefaultDesignKeywords = []string{"fgl", "design", "dl", "proposed", "finish", "grade", "fg"}
)

// DefaultProximityRadius is the per-axis distance (drawing units) within which an
// annotation counts as "near" a point.
const DefaultProximityRadius = 5.0
