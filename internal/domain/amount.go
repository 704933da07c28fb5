package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// vulgarFractions maps Unicode fraction glyphs to their ASCII form.
// Covers the glyphs commonly produced by recipe sites and mobile keyboards.
var vulgarFractions = map[rune]string{
	'½': "1/2",
	'⅓': "1/3",
	'⅔': "2/3",
	'¼': "1/4",
	'¾': "3/4",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅐': "1/7",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
	'⅑': "1/9",
	'⅒': "1/10",
}

var (
	numberRe   = regexp.MustCompile(`^\d+\.?\d*$`)
	fractionRe = regexp.MustCompile(`^\d+/\d+$`)
	mixedRe    = regexp.MustCompile(`^\d+ \d+/\d+$`)
)

// NormalizeAmount canonicalizes an ingredient amount string.
// Unicode vulgar fractions are expanded to ASCII ("½" → "1/2", "1½" →
// "1 1/2"), spaces around the fraction slash are removed ("1 1 / 2" →
// "1 1/2"), and runs of whitespace collapse to a single space.
// The result is what ValidateAmount expects; callers should normalize on
// every write so stored amounts are already canonical.
func NormalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		frac, ok := vulgarFractions[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		// "1½" means one and a half; keep the glyph separated from a
		// preceding digit so it reads as a mixed number.
		if prev := b.String(); prev != "" && !strings.HasSuffix(prev, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(frac)
	}
	s = b.String()

	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " /", "/")
	s = strings.ReplaceAll(s, "/ ", "/")
	return s
}

// ValidateAmount reports whether s is an acceptable ingredient amount.
// Empty is acceptable (amount is optional). Otherwise s must be an integer or
// decimal in [0, 1000], a simple fraction "a/b" with b != 0, or a mixed
// number "a b/c" — each evaluating to at most 1000.
// s is expected to already be in NormalizeAmount canonical form.
func ValidateAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}

	switch {
	case numberRe.MatchString(s):
		v, err := strconv.ParseFloat(s, 64)
		return err == nil && v >= 0 && v <= 1000

	case fractionRe.MatchString(s):
		v, ok := fractionValue(s)
		return ok && v >= 0 && v <= 1000

	case mixedRe.MatchString(s):
		parts := strings.SplitN(s, " ", 2)
		whole, err := strconv.Atoi(parts[0])
		if err != nil {
			return false
		}
		frac, ok := fractionValue(parts[1])
		if !ok {
			return false
		}
		v := float64(whole) + frac
		return v >= 0 && v <= 1000

	default:
		return false
	}
}

// fractionValue evaluates "a/b", returning false when b is zero or either
// side fails to parse.
func fractionValue(s string) (float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	den, err := strconv.Atoi(parts[1])
	if err != nil || den == 0 {
		return 0, false
	}
	return float64(num) / float64(den), true
}
