package utils

import (
	"fmt"
	"strings"
	"time"
)

func Ptr[T any](v T) *T {
	return &v
}

// FormatCollection renders items as a 1-indexed numbered list.
func FormatCollection(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

// ChunkLines groups lines into messages that each stay under limit
// characters. Lines are never split.
func ChunkLines(lines []string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}

	var chunks []string
	var b strings.Builder
	for _, line := range lines {
		if b.Len() > 0 && b.Len()+len(line)+1 > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// FormatPercent renders a completion percentage with two decimals.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatRemaining renders the time left on a lease, rounded to the minute.
// Expired leases render as "expired".
func FormatRemaining(expires time.Time, now time.Time) string {
	remaining := expires.Sub(now)
	if remaining <= 0 {
		return "expired"
	}
	remaining = remaining.Round(time.Minute)
	hours := int(remaining / time.Hour)
	minutes := int(remaining % time.Hour / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
