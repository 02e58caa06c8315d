package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object found in reply")

// BuildSystemPrompt describes the extraction task and the exact target JSON shape.
func BuildSystemPrompt() string {
	parts := []string{
		"You read civil-engineering site drawings (survey plans, grading plans, level sheets).",
		"Extract every spot level you can see and return ONLY one JSON object matching the JSON Schema below.",
		"Shape: {\"points\":[{\"id\",\"x\",\"y\",\"z\",\"type\",\"label\"}], \"levelTable\":[{\"pointId\",\"x\",\"y\",\"ngl\",\"fgl\"}], " +
			"\"contours\":[{\"elevation\",\"type\"}], \"gridReference\":{\"detected\",\"system\"}, \"scale\", \"notes\"}.",
		"'type' is NGL for existing/natural ground levels and FGL for design/proposed/finished levels.",
		"x and y are drawing or grid coordinates when a grid is printed; omit them when you cannot read them.",
		"If the drawing has a table pairing existing and design levels per point, put each row in 'levelTable'.",
		"'scale' is the stated drawing scale as text, e.g. \"1:200\".",
		"Numbers must be JSON numbers without units.",
		"Never output null. If a field is not present, omit it.",
		"JSON Schema:\n" + mustJSON(BuildDrawingJSONSchema()),
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the file name hint that accompanies the attached document.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("Filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("The drawing is attached. Return ONLY JSON that matches the provided schema.")
	return b.String()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic("llm: encode prompt schema: " + err.Error())
	}
	return string(b)
}
