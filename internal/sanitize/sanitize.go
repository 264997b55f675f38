// Package sanitize cleans free-text run labels before they are stored.
// Labels reach the store from the CLI and from MCP clients, and are later
// echoed back to agents through walk_history and the recent-runs resource,
// so markup and control characters are removed on the way in.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the maximum label length in runes.
const MaxLabelLength = 80

var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reMarkdownHeading matches markdown heading markers at the start of the label.
	reMarkdownHeading = regexp.MustCompile(`^#{1,6}\s+`)

	// reBackticks matches any run of backticks.
	reBackticks = regexp.MustCompile("`+")

	// reWhitespace matches runs of whitespace, including newlines and tabs.
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Label returns input as a single-line label:
//  1. Strip null bytes and control characters
//  2. Strip XML/HTML tags
//  3. Drop backticks and a leading markdown heading marker
//  4. Collapse whitespace to single spaces and trim
//  5. Truncate to MaxLabelLength runes
func Label(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reBackticks.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reMarkdownHeading.ReplaceAllString(s, "")

	if utf8.RuneCountInString(s) > MaxLabelLength {
		runes := []rune(s)
		s = strings.TrimSpace(string(runes[:MaxLabelLength]))
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F, 0x7F).
// Newlines and tabs become spaces so words stay separated.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
