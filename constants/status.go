package constants

// Outcome describes which branch of the document reply handling produced the points.
type Outcome string

// Stable values (surfaced in metadata and metrics labels).
const (
	OutcomeStructured    Outcome = "STRUCTURED"     // schema-valid JSON block
	OutcomeFallbackRegex Outcome = "FALLBACK_REGEX" // regex scan over the raw reply
	OutcomeEmpty         Outcome = "EMPTY"          // nothing recoverable
)

// Source identifies the ingestion front-end.
type Source string

const (
	SourceText     Source = "text"
	SourceDocument Source = "document"
)
