package export

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRe  = regexp.MustCompile(`<[^>]*>`)
	wsRe   = regexp.MustCompile(`\s+`)
	nbspRe = regexp.MustCompile(`\x{00a0}`)
)

// StripMarkup removes inline markup and entities from user-authored text,
// returning whitespace-collapsed plain text. This is the single stripping
// utility shared by the CSV, Word and QTI encoders.
func StripMarkup(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = nbspRe.ReplaceAllString(s, " ")
	s = wsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

const (
	titleMaxTokens = 5
	titleMaxRunes  = 60
)

// DeriveTitle returns the question's own title when present and short
// enough, otherwise a short title built from the first words of the
// stimulus.
func DeriveTitle(title, stimulus string) string {
	if t := strings.TrimSpace(title); t != "" && len([]rune(t)) <= titleMaxRunes {
		return t
	}
	words := strings.Fields(StripMarkup(stimulus))
	if len(words) > titleMaxTokens {
		words = words[:titleMaxTokens]
	}
	t := strings.Join(words, " ")
	if r := []rune(t); len(r) > titleMaxRunes {
		t = string(r[:titleMaxRunes-1]) + "…"
	}
	return t
}
