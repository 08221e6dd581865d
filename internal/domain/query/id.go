package query

import (
	"net/url"
	"regexp"
	"strings"
)

// Product ids arrive mangled from frontends: wrapped in quotes, suffixed with
// encoded newlines (%0A), double-encoded, or carrying zero-width characters
// pasted from spreadsheets. Lookups normalize before hitting the catalog.

var trailingEncodedNewlines = regexp.MustCompile(`(?i)(?:%0A|%0D)+$`)

// NormalizeID cleans a raw product id for catalog lookup: trims whitespace and
// surrounding quotes, drops trailing encoded newlines, URL-decodes, and strips
// control and zero-width characters.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	s = trailingEncodedNewlines.ReplaceAllString(s, "")
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}
	return strings.TrimSpace(stripControl(s))
}

// AlternateID decodes first and cleans second, catching double-encoded ids
// that NormalizeID leaves partially escaped. Returns "" when it produces
// nothing new over the given normalized form.
func AlternateID(raw, normalized string) string {
	s := strings.TrimSpace(raw)
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}
	alt := NormalizeID(s)
	if alt == "" || alt == normalized {
		return ""
	}
	return alt
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return -1
		case r == '\u200b' || r == '\ufeff': // zero-width space, BOM
			return -1
		}
		return r
	}, s)
}
