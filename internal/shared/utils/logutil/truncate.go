// Package logutil shortens values before they reach the log.
package logutil

// TruncateForLog keeps the first maxLen runes of s and marks the cut with "...".
// Use it for secrets where only a prefix may be logged.
func TruncateForLog(s string, maxLen int) string {
	if maxLen <= 0 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
