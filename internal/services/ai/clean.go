package ai

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag from model output; the clients render plain
// text and markdown only.
var textPolicy = bluemonday.StrictPolicy()

// cleanText removes markup and surrounding whitespace from model text.
// bluemonday escapes entities, so they are unescaped again for plain text.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func cleanAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := cleanText(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// cleanURL keeps absolute http(s) URLs and drops everything else.
func cleanURL(raw string) string {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") {
		return ""
	}
	if strings.ContainsAny(u, " \"'<>") {
		return ""
	}
	return u
}
