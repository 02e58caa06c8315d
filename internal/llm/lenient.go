package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// reNumeric accepts "580.5", "-1.2e3", "580.50m", "RL 580.50".
var reNumeric = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`)

// ExtractJSONBlock returns the first balanced {...} block in text. Braces inside JSON
// string literals are ignored.
func ExtractJSONBlock(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// SanitizeOptionalFields repairs element-level fields that don't meet the schema so the
// overall document can still validate: numeric strings become numbers, ids become
// strings, unusable optionals are dropped.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	drop := func(path string) { dropped = append(dropped, path) }

	m["points"] = sanitizeList(m["points"], "points", drop, func(row map[string]any, path string) bool {
		coerceString(row, "id", path, drop)
		coerceString(row, "type", path, drop)
		coerceString(row, "label", path, drop)
		for _, k := range []string{"x", "y", "z"} {
			coerceNumber(row, k, path, drop)
		}
		keepOnly(row, path, drop, "id", "x", "y", "z", "type", "label")
		return true
	})

	if _, ok := m["levelTable"]; ok {
		m["levelTable"] = sanitizeList(m["levelTable"], "levelTable", drop, func(row map[string]any, path string) bool {
			renameKey(row, "point_id", "pointId")
			renameKey(row, "id", "pointId")
			coerceString(row, "pointId", path, drop)
			for _, k := range []string{"x", "y", "ngl", "fgl"} {
				coerceNumber(row, k, path, drop)
			}
			keepOnly(row, path, drop, "pointId", "x", "y", "ngl", "fgl")
			if _, ok := row["pointId"]; !ok {
				drop(path + "(no pointId)")
				return false
			}
			return true
		})
	}

	if _, ok := m["contours"]; ok {
		m["contours"] = sanitizeList(m["contours"], "contours", drop, func(row map[string]any, path string) bool {
			coerceNumber(row, "elevation", path, drop)
			coerceString(row, "type", path, drop)
			keepOnly(row, path, drop, "elevation", "type")
			_, ok := row["elevation"]
			return ok
		})
	}

	if g, ok := m["gridReference"].(map[string]any); ok {
		switch t := g["detected"].(type) {
		case bool:
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(t)))
			g["detected"] = err == nil && b || strings.EqualFold(strings.TrimSpace(t), "yes")
		default:
			_, hasSystem := g["system"].(string)
			g["detected"] = hasSystem
		}
		coerceString(g, "system", "gridReference", drop)
		keepOnly(g, "gridReference", drop, "detected", "system")
	} else if _, ok := m["gridReference"]; ok {
		delete(m, "gridReference")
		drop("gridReference(type)")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}

func sanitizeList(v any, name string, drop func(string), fix func(map[string]any, string) bool) []any {
	list, ok := v.([]any)
	if !ok {
		if v != nil {
			drop(name + "(type)")
		}
		return []any{}
	}
	out := make([]any, 0, len(list))
	for i, item := range list {
		row, ok := item.(map[string]any)
		path := fmt.Sprintf("%s[%d]", name, i)
		if !ok {
			drop(path + "(type)")
			continue
		}
		if fix(row, path) {
			out = append(out, row)
		}
	}
	return out
}

func coerceNumber(row map[string]any, key, path string, drop func(string)) {
	v, ok := row[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		return
	case string:
		if f, ok := parseLooseFloat(t); ok {
			row[key] = f
			return
		}
	}
	delete(row, key)
	drop(path + "." + key)
}

func coerceString(row map[string]any, key, path string, drop func(string)) {
	v, ok := row[key]
	if !ok {
		return
	}
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			row[key] = s
			return
		}
	case float64:
		row[key] = strconv.FormatFloat(t, 'f', -1, 64)
		return
	}
	delete(row, key)
	drop(path + "." + key)
}

func renameKey(row map[string]any, from, to string) {
	if v, ok := row[from]; ok {
		if _, exists := row[to]; !exists {
			row[to] = v
		}
		delete(row, from)
	}
}

func keepOnly(row map[string]any, path string, drop func(string), keys ...string) {
	for k := range row {
		keep := false
		for _, allowed := range keys {
			if k == allowed {
				keep = true
				break
			}
		}
		if !keep {
			delete(row, k)
			drop(path + "." + k + "(unknown)")
		}
	}
}

// parseLooseFloat reads the first number in s, so unit suffixes and prefixes are tolerated.
func parseLooseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	match := reNumeric.FindString(s)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	return f, err == nil
}
