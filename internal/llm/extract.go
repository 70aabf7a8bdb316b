package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of free-form model output.
//
// Models frequently wrap an otherwise well-formed payload in prose or
// markdown code fences. Extraction is two-stage: first the raw text is
// tried as-is; on failure the fences are stripped and the slice from
// the first '{' to the last '}' is retried. Returns ok=false when no
// parseable object can be found.
func ExtractJSON(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}

	cleaned := strings.TrimSpace(trimmed)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}

	return candidate, true
}
