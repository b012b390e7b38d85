package agent

import "strings"

// ExtractCode pulls the first fenced code block out of a model response.
// It prefers a block tagged with the requested language, then any fenced
// block; if the response contains no fences at all it is returned as-is,
// since models sometimes reply with raw code. Returns "" when nothing
// usable remains.
func ExtractCode(text, lang string) string {
	// Look for ```lang or ``` blocks
	patterns := []string{
		"```" + lang + "\n",
		"```" + lang + "\r\n",
		"```\n",
		"```\r\n",
	}

	for _, pattern := range patterns {
		if idx := strings.Index(text, pattern); idx != -1 {
			start := idx + len(pattern)
			end := strings.Index(text[start:], "```")
			if end != -1 {
				return strings.TrimSpace(text[start : start+end])
			}
		}
	}

	// An opening fence with no closing fence: take everything after it
	// rather than shipping the fence itself into the artifact.
	if idx := strings.Index(text, "```"); idx != -1 {
		rest := text[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			return strings.TrimSpace(rest[nl+1:])
		}
		return ""
	}

	// No code block found, return the whole text (might be raw code)
	return strings.TrimSpace(text)
}
