package cmd

import (
	"testing"
	"time"
)

func TestParseRetention(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"720h", 720 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseRetention(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseRetention(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRetention(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRetention(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.input); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	if got := summarize("short text", 70); got != "short text" {
		t.Errorf("short input should pass through, got %q", got)
	}

	long := "a very long piece of post content that would overflow a single terminal line if printed whole"
	got := summarize(long, 30)
	if n := len([]rune(got)); n != 30 {
		t.Errorf("summarized length = %d, want 30", n)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("summary should end with an ellipsis, got %q", got)
	}
}
