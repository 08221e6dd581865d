// Package listing cleans raw marketplace product text into display-ready
// fields: prose descriptions with synthesized feature bullets, parsed
// dimensions, and deduplicated titles.
package listing

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Dimensions holds sizes parsed out of a product description, as strings so
// the original precision ("23.6") survives round-tripping into bullets.
type Dimensions struct {
	WidthIn     string
	LengthIn    string
	WidthCm     string
	LengthCm    string
	ThicknessIn string
}

// IsZero reports whether no dimension was parsed.
func (d Dimensions) IsZero() bool {
	return d == Dimensions{}
}

// Normalized is the cleaned view of one listing.
type Normalized struct {
	Title       string
	Description string
	Creative    string
	Features    []string
	Dimensions  Dimensions
}

var (
	reMultiSpace = regexp.MustCompile(`[ \t\x{00A0}]{2,}`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reControl    = regexp.MustCompile(`[\x{0000}-\x{001F}\x{007F}]`)
	reTrailSeps  = regexp.MustCompile(`([,;/|\-])\s*[,;/|\-]+`)
	reDelims     = regexp.MustCompile(`\s*[|/]\s*`)
	reMultiComma = regexp.MustCompile(`\s*,\s*,+\s*`)
	reStars      = regexp.MustCompile(`\s*[★☆]+`)
	reCommaDot   = regexp.MustCompile(`\s*,\s*\.`)

	reDimInch = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*["”]?\s*(?:\(w\))?\s*[x×]\s*(\d+(?:\.\d+)?)\s*["”]?\s*(?:\(l\))?`)
	reDimCm   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s*[x×]\s*(\d+(?:\.\d+)?)\s*cm`)
	reThick   = regexp.MustCompile(`(?i)(?:thickness[:\s]*)?(\d+(?:\.\d+)?)\s*(?:inch|in|")`)

	reAntiSlip = regexp.MustCompile(`(?i)\banti[- ]?slip|non[- ]?slip\b`)
	rePoly     = regexp.MustCompile(`(?i)\bpolyester\b`)
	reWashable = regexp.MustCompile(`(?i)\b(machine washable|washable)\b`)
	reHardwood = regexp.MustCompile(`(?i)\b(hardwood|wood floor)\b`)

	// Seller boilerplate that adds nothing to a product description.
	reBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)customer service`),
		regexp.MustCompile(`(?i)0\s*risk purchase`),
		regexp.MustCompile(`(?i)perfect shopping experience`),
		regexp.MustCompile(`(?i)contact us.*?purchase`),
		regexp.MustCompile(`(?i)we will do our best.*?satisfied`),
	}

	punctReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"’", "'", "‘", "'", "‚", "'", "‛", "'",
		"×", "x", "–", "-", "—", "-", "‒", "-",
		"•", " ", "★", " ", "☆", " ", "【", " ", "】", " ", "、", ", ",
	)
)

// Normalize cleans a listing's title, stored description, and freshly
// generated creative blurb into display-ready text.
func Normalize(title, rawDescription, rawCreative string) Normalized {
	s := rawDescription
	for _, re := range reBoilerplate {
		s = re.ReplaceAllString(s, " ")
	}
	s = normalizeDelims(s)
	s = stripControls(s)
	s, dims := normalizeDimensions(s)
	s = dedupeWords(s)
	s = reStars.ReplaceAllString(s, " ")
	s = reCommaDot.ReplaceAllString(s, ".")
	s = reMultiComma.ReplaceAllString(s, ", ")
	desc := sentenceize(s)

	features := synthesizeBullets(desc, dims)

	creative := stripControls(strings.TrimSpace(rawCreative))
	creative = strings.TrimRightFunc(creative, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '!' && r != '?'
	})
	creative = sentenceize(creative)

	if len(features) > 0 {
		var b strings.Builder
		b.WriteString(strings.TrimRight(desc, "."))
		b.WriteString(".")
		for _, f := range features {
			b.WriteString(" • ")
			b.WriteString(f)
			b.WriteString(".")
		}
		desc = b.String()
	}

	return Normalized{
		Title:       cleanTitle(title),
		Description: desc,
		Creative:    creative,
		Features:    features,
		Dimensions:  dims,
	}
}

func stripControls(s string) string {
	s = reControl.ReplaceAllString(s, " ")
	s = punctReplacer.Replace(s)
	s = html.UnescapeString(s)
	s = reTrailSeps.ReplaceAllString(s, "$1 ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func normalizeDelims(s string) string {
	s = reDelims.ReplaceAllString(s, ", ")
	return reMultiComma.ReplaceAllString(s, ", ")
}

// normalizeDimensions rewrites the first inch/cm/thickness spec found into a
// canonical form and returns the parsed values.
func normalizeDimensions(s string) (string, Dimensions) {
	var dims Dimensions
	if m := reDimInch.FindStringSubmatch(s); m != nil {
		dims.WidthIn, dims.LengthIn = m[1], m[2]
		s = replaceFirst(s, reDimInch, m[1]+`" × `+m[2]+`"`)
	}
	if m := reDimCm.FindStringSubmatch(s); m != nil {
		dims.WidthCm, dims.LengthCm = m[1], m[2]
		s = replaceFirst(s, reDimCm, m[1]+" × "+m[2]+" cm")
	}
	if m := reThick.FindStringSubmatch(s); m != nil {
		dims.ThicknessIn = m[1]
		s = replaceFirst(s, reThick, m[1]+`" thickness`)
	}
	return s, dims
}

func replaceFirst(s string, re *regexp.Regexp, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

func synthesizeBullets(cleanText string, dims Dimensions) []string {
	var bullets []string
	switch {
	case dims.WidthIn != "" && dims.LengthIn != "":
		size := "Size: " + dims.WidthIn + `" × ` + dims.LengthIn + `"`
		if dims.WidthCm != "" && dims.LengthCm != "" {
			size += " (" + dims.WidthCm + " × " + dims.LengthCm + " cm)"
		}
		bullets = append(bullets, size)
	case dims.WidthCm != "" && dims.LengthCm != "":
		bullets = append(bullets, "Size: "+dims.WidthCm+" × "+dims.LengthCm+" cm")
	}
	if dims.ThicknessIn != "" {
		bullets = append(bullets, "Thickness: "+dims.ThicknessIn+`" (low profile)`)
	}
	if reAntiSlip.MatchString(cleanText) {
		bullets = append(bullets, "Backing: Anti-slip rubber")
	}
	if rePoly.MatchString(cleanText) {
		bullets = append(bullets, "Surface: Non-woven polyester")
	}
	if reWashable.MatchString(cleanText) {
		bullets = append(bullets, "Care: Machine washable")
	}
	if reHardwood.MatchString(cleanText) {
		bullets = append(bullets, "Floor Safety: Suitable for hardwood")
	}

	seen := make(map[string]struct{}, len(bullets))
	dedup := bullets[:0]
	for _, b := range bullets {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		dedup = append(dedup, b)
	}
	return dedup
}

// dedupeWords collapses immediate word repetitions ("Soft Soft Rug" -> "Soft Rug").
// Marketplace titles and specs repeat words when sellers concatenate fields.
func dedupeWords(s string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	prev := ""
	for _, f := range fields {
		lower := strings.ToLower(strings.Trim(f, ",.;:"))
		if lower != "" && lower == prev {
			continue
		}
		prev = lower
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// sentenceize splits text into sentences, capitalizes each, and strips
// dangling separators.
func sentenceize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	var parts []string
	start := 0
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' && r != '"' {
			continue
		}
		// Break only before a whitespace gap followed by an upper or digit.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && (unicode.IsUpper(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '"') {
			parts = append(parts, string(runes[start:i+1]))
			start = j
			i = j - 1
		}
	}
	parts = append(parts, string(runes[start:]))

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r := []rune(p)
		if unicode.IsLower(r[0]) {
			r[0] = unicode.ToUpper(r[0])
			p = string(r)
		}
		out = append(out, strings.TrimRight(p, ",;"))
	}
	return strings.Join(out, " ")
}

func cleanTitle(t string) string {
	if strings.TrimSpace(t) == "" {
		return "Untitled"
	}
	t = stripControls(normalizeDelims(t))
	t = dedupeWords(t)
	return sentenceize(t)
}
