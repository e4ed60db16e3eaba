package ai

import "strings"

// ExtractJSONObject returns the first balanced {...} block in text, skipping
// braces inside string literals. Assist replies often wrap JSON in prose or
// markdown fences.
func ExtractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// ExtractJSONArray returns the first balanced [...] block in text.
func ExtractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
