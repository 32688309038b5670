package llm

import (
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// SanitizeJSON strips markdown code fences and surrounding prose from a model
// response and repairs common JSON defects (trailing commas, single quotes,
// truncated output). The returned string is valid JSON or an error.
func SanitizeJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty model response")
	}
	s = stripCodeFence(s)

	// Cut leading prose before the first JSON bracket.
	if i := strings.IndexAny(s, "{["); i > 0 {
		s = s[i:]
	}

	repaired, err := jsonrepair.RepairJSON(s)
	if err != nil {
		return "", fmt.Errorf("repair model JSON: %w", err)
	}
	return repaired, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// The fence may carry a language tag on the first line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "json" || first == "JSON" || first == "" {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
