package identity

import (
	"regexp"
	"strings"
	"unicode"
)

// \b is ASCII-only in Go, so the replace patterns below see a boundary next to
// any non-ASCII letter: "éps gladys" still loses its "ps". salesmanCode and
// wordToken pick identities and spell out Unicode word boundaries instead.
var (
	specialistOrtho = regexp.MustCompile(`\bsp[\s.]*ort[a-z]*\b`)
	masterHealth    = regexp.MustCompile(`\bm[\s.]*kes\b`)
	certifiedOrtho  = regexp.MustCompile(`\bcert[\s.]*ort[a-z]*\b`)
	namePunctuation = regexp.MustCompile(`[.,\-]`)

	nonDigit     = regexp.MustCompile(`\P{Nd}`)
	nonWordSpace = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	clinicPrefix = regexp.MustCompile(`\b(klinik|apotek|praktek|rs|rsia|rsu|dr|drg)\b`)

	salesmanCode   = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(ps|dc|am|ts|cr|ac|sm|hr)[\s\-.]*(\p{Nd}+)(?:[^\p{L}\p{N}_]|$)`)
	salesmanPrefix = regexp.MustCompile(`\b(ps|dc|am|ts|cr|ac|sm|hr|mr|ms|mrs|dr)\b`)
	digitRun       = regexp.MustCompile(`\p{Nd}+`)
	wordToken      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	nonWord        = regexp.MustCompile(`[^\p{L}\p{N}]`)

	salesmanSeparator = regexp.MustCompile(`[/&,]`)
)

// honorifics are academic and professional titles that carry no identity.
var honorifics = map[string]struct{}{
	"drg": {}, "dr": {}, "drs": {}, "dra": {}, "sp": {}, "spd": {}, "ort": {}, "orto": {},
	"mm": {}, "mkes": {}, "cert": {}, "fisid": {}, "kg": {}, "mha": {}, "sph": {}, "amd": {}, "skg": {},
}

// absentPhones are placeholder values exported by the upstream CRM.
var absentPhones = map[string]struct{}{"null": {}, "none": {}, "nan": {}}

// NormalizeName reduces a person or customer name to lower-case tokens with
// titles and specialist suffixes removed.
func NormalizeName(text string) string {
	if text == "" {
		return ""
	}
	core := strings.ToLower(text)
	core = specialistOrtho.ReplaceAllString(core, "")
	core = masterHealth.ReplaceAllString(core, "")
	core = certifiedOrtho.ReplaceAllString(core, "")
	core = namePunctuation.ReplaceAllString(core, " ")

	tokens := strings.Fields(core)
	kept := tokens[:0]
	for _, token := range tokens {
		if _, ok := honorifics[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// NormalizePhone keeps the digits of a phone number and rewrites the
// Indonesian 62 country prefix to a local 0. It returns "" for empty input
// and for the null/none/nan placeholders.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	if _, ok := absentPhones[strings.ToLower(phone)]; ok {
		return ""
	}
	digits := nonDigit.ReplaceAllString(phone, "")
	if strings.HasPrefix(digits, "62") {
		digits = "0" + digits[2:]
	}
	return digits
}

// NormalizeProductName lower-cases a product name and turns punctuation into
// single spaces.
func NormalizeProductName(text string) string {
	if text == "" {
		return ""
	}
	text = nonWordSpace.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeClinicName drops facility-type words such as klinik or apotek
// before the product-name punctuation rule applies.
func NormalizeClinicName(text string) string {
	if text == "" {
		return ""
	}
	text = clinicPrefix.ReplaceAllString(strings.ToLower(text), " ")
	text = nonWordSpace.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// ExtractSalesmanCode finds a role prefix followed by digits, allowing
// spaces, dashes or dots in between, and returns it compacted: "PS-101"
// becomes "ps101". It returns "" when none is present.
func ExtractSalesmanCode(text string) string {
	if text == "" {
		return ""
	}
	match := salesmanCode.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return ""
	}
	return match[1] + match[2]
}

// CleanSalesmanName strips role prefixes, salutations, digits and
// punctuation, leaving only the name words.
func CleanSalesmanName(text string) string {
	if text == "" {
		return ""
	}
	text = salesmanPrefix.ReplaceAllString(strings.ToLower(text), " ")
	text = digitRun.ReplaceAllString(text, " ")
	text = nonWord.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// SplitSalesmanField splits a transaction salesman field that names several
// people ("GLADYS / WILSON", "ps101 & ps102") into trimmed fragments.
func SplitSalesmanField(field string) []string {
	parts := salesmanSeparator.Split(field, -1)
	fragments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}
	return fragments
}

// Title upper-cases every letter that follows a non-letter and lower-cases
// the others, so digits and apostrophes start a new word: "gizmo x2b"
// becomes "Gizmo X2B" and "o'neil" becomes "O'Neil".
func Title(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevCased := false
	for _, r := range text {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// standaloneDigits returns the word tokens of text made only of digits.
func standaloneDigits(text string) []string {
	var out []string
	for _, token := range wordToken.FindAllString(text, -1) {
		if digitRun.FindString(token) == token {
			out = append(out, token)
		}
	}
	return out
}
