package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

var topLevelKeys = map[string]struct{}{
	"points": {}, "levelTable": {}, "contours": {}, "gridReference": {}, "scale": {}, "notes": {},
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (level_table -> levelTable, grid -> gridReference, ...)
// - Drops null top-level values
// - Coerces scale/notes to strings and a bare boolean grid to {detected}
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("level_table", "levelTable")
	renamed("levels", "levelTable")
	renamed("spot_levels", "points")
	renamed("spotLevels", "points")
	renamed("grid", "gridReference")
	renamed("grid_reference", "gridReference")
	renamed("contour", "contours")
	renamed("contour_lines", "contours")
	renamed("drawing_scale", "scale")

	// 2) drop nulls
	for k, v := range maps.Clone(m) {
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		}
	}
	if _, ok := m["points"]; !ok {
		// An absent list is an empty list; the level table may still carry data.
		m["points"] = []any{}
	}

	// 3) scalar coercions
	switch t := m["scale"].(type) {
	case float64:
		m["scale"] = "1:" + strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		if s := strings.TrimSpace(t); s != "" {
			m["scale"] = s
		} else {
			delete(m, "scale")
			dropped = append(dropped, "scale(empty)")
		}
	case nil:
	default:
		delete(m, "scale")
		dropped = append(dropped, "scale(type)")
	}

	switch t := m["notes"].(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		m["notes"] = strings.Join(parts, "; ")
	case string, nil:
	default:
		m["notes"] = fmt.Sprint(t)
	}

	switch t := m["gridReference"].(type) {
	case bool:
		m["gridReference"] = map[string]any{"detected": t}
	case string:
		m["gridReference"] = map[string]any{"detected": strings.TrimSpace(t) != "", "system": strings.TrimSpace(t)}
	}

	// 4) remove unknown keys
	for k := range maps.Clone(m) {
		if _, ok := topLevelKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
