package logger

import (
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 10, want: ""},
		{name: "plain text untouched", input: "React Hooks", maxLength: 100, want: "React Hooks"},
		{name: "control characters removed", input: "a\x00b\x1bc", maxLength: 100, want: "abc"},
		{name: "newlines kept", input: "line1\nline2", maxLength: 100, want: "line1\nline2"},
		{name: "truncated", input: "abcdefghij", maxLength: 4, want: "abcd..."},
		{name: "invalid utf8 dropped", input: "ok\xffok", maxLength: 100, want: "okok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeHelpers(t *testing.T) {
	t.Parallel()

	if got := SanitizeString("req\x07-1", MaxRequestIDLength); got != "req-1" {
		t.Errorf("SanitizeString = %q, want req-1", got)
	}

	long := strings.Repeat("x", MaxPathLength+10)
	if got := SanitizePath(long); len(got) != MaxPathLength+3 {
		t.Errorf("SanitizePath length = %d, want %d", len(got), MaxPathLength+3)
	}
	if got := SanitizeString(long, 0); got != long {
		t.Error("SanitizeString with maxLength 0 should fall back to the general limit")
	}
}
