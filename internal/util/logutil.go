package util

import "strings"

// TruncateForLog caps a string at limit runes for log output, marking the
// cut with an ellipsis. Prompts and model responses can be huge.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
