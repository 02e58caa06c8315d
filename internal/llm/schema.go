package llm

// BuildDrawingJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is embedded in the prompt and also used locally to validate the reply.
func BuildDrawingJSONSchema() map[string]any {
	number := map[string]any{"type": "number"}
	text := map[string]any{"type": "string"}

	point := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":    text,
			"x":     number,
			"y":     number,
			"z":     number,
			"type":  text,
			"label": text,
		},
	}
	levelRow := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"pointId": map[string]any{"type": "string", "minLength": 1},
			"x":       number,
			"y":       number,
			"ngl":     number,
			"fgl":     number,
		},
		"required": []string{"pointId"},
	}
	contour := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"elevation": number,
			"type":      text,
		},
		"required": []string{"elevation"},
	}
	grid := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"detected": map[string]any{"type": "boolean"},
			"system":   text,
		},
		"required": []string{"detected"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"points":        map[string]any{"type": "array", "items": point},
			"levelTable":    map[string]any{"type": "array", "items": levelRow},
			"contours":      map[string]any{"type": "array", "items": contour},
			"gridReference": grid,
			"scale":         text,
			"notes":         text,
		},
		"required": []string{"points"},
	}
}
