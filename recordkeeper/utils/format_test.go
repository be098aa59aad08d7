package utils

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCollection(t *testing.T) {
	got := FormatCollection([]string{"first", "second", "third"})
	want := "1. first\n2. second\n3. third\n"
	if got != want {
		t.Errorf("FormatCollection() = %q, want %q", got, want)
	}

	if got := FormatCollection(nil); got != "" {
		t.Errorf("FormatCollection(nil) = %q, want empty", got)
	}
}

func TestChunkLines(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}

	chunks := ChunkLines(lines, 90)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 90 {
			t.Errorf("chunk %d is %d chars, over the limit", i, len(chunk))
		}
	}
	if !strings.HasPrefix(chunks[1], strings.Repeat("c", 40)) {
		t.Errorf("third line should open the second chunk")
	}
}

func TestChunkLinesNeverSplitsALine(t *testing.T) {
	long := strings.Repeat("x", 200)
	chunks := ChunkLines([]string{long}, 50)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0], long) {
		t.Error("the oversized line must survive intact")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{75.0, "75.00%"},
		{33.333333, "33.33%"},
		{0, "0.00%"},
		{100, "100.00%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires time.Time
		want    string
	}{
		{name: "hours and minutes", expires: now.Add(90 * time.Minute), want: "1h30m"},
		{name: "minutes only", expires: now.Add(25 * time.Minute), want: "25m"},
		{name: "already over", expires: now.Add(-time.Minute), want: "expired"},
		{name: "exactly now", expires: now, want: "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRemaining(tt.expires, now); got != tt.want {
				t.Errorf("FormatRemaining() = %q, want %q", got, tt.want)
			}
		})
	}
}
