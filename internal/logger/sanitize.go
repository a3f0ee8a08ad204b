package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for values that end up in log fields.
const (
	MaxPathLength          = 500
	MaxRequestIDLength     = 64
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength bounds prompts and model output logged in debug mode.
	MaxDebugContentLength = 10000
)

// SanitizeString makes s safe for a log field: invalid UTF-8 is dropped,
// control characters other than whitespace are removed and the result is
// truncated to maxLength (MaxGeneralStringLength when maxLength <= 0).
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizePath sanitizes a URL path for logging.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeDebugContent sanitizes prompts and model responses. Debug logs get
// the same treatment as everything else.
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}
