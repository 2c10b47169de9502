package common

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// ============================================================================
// Normalisation
// ============================================================================

var (
	// reHyphenWrap matches a line-wrap hyphen followed by a lowercase letter.
	// Uppercase and digits are left alone so formulas such as "Fe-\nSi" or
	// "C-\n3" survive.
	reHyphenWrap = regexp.MustCompile(`-\n(\p{Ll})`)

	// reBlankRun matches two or more line breaks, including whitespace-only lines.
	reBlankRun = regexp.MustCompile(`\n(?:[ \t\x{3000}]*\n)+`)

	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// SoftHyphen is U+00AD, emitted by many PDF producers at line breaks.
const SoftHyphen = "\u00AD"

// CleanText removes soft hyphens, heals hyphenated line wraps before a
// lowercase letter, collapses runs of blank lines into a single blank line and
// trims the result.
func CleanText(raw string) string {
	s := newlineReplacer.Replace(raw)
	s = strings.ReplaceAll(s, SoftHyphen, "")
	s = reHyphenWrap.ReplaceAllString(s, "$1")
	s = reBlankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// FoldWidth maps full-width ASCII variants (digits, Latin letters and
// punctuation such as "～", "．", "％") to their narrow forms.
func FoldWidth(s string) string {
	return width.Fold.String(s)
}

// NFKC applies Unicode compatibility composition ("㎛" → "μm", "℃" → "°C").
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// ToASCIIDigits replaces full-width digits ０-９ with ASCII digits and leaves
// everything else unchanged.
func ToASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return '0' + (r - '０')
		}
		return r
	}, s)
}

// ============================================================================
// Length and hashing
// ============================================================================

// RuneLen is the character count used for every length budget.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// EstimateTokens approximates the token count as one token per four
// characters, never less than one.
func EstimateTokens(s string) int {
	n := RuneLen(s) / 4
	if n < 1 {
		return 1
	}
	return n
}

// MD5Hex returns the lowercase hex MD5 digest of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

//Personal.AI order the ending
