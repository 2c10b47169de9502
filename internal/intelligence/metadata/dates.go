package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/patent2rag/internal/intelligence/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Date normalisation
// ─────────────────────────────────────────────────────────────────────────────

// eraOffsets maps Japanese era names to the Gregorian year preceding their
// first year, so that gregorian = offset + era year.
var eraOffsets = map[string]int{
	"令和": 2018,
	"平成": 1988,
	"昭和": 1925,
}

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

const monthNames = `(Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sept?(?:ember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

var (
	reDateHangul  = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	reDateEra     = regexp.MustCompile(`(令和|平成|昭和)\s*(元|\d{1,2})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	reDateKanji   = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日`)
	reDateUS      = regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	reDateDMY     = regexp.MustCompile(`(?i)\b(\d{1,2})\s+` + monthNames + `\.?,?\s+(\d{4})\b`)
	reDateYMD     = regexp.MustCompile(`\b(\d{4})\s*[./-]\s*(\d{1,2})\s*[./-]\s*(\d{1,2})\b`)
	reDateEU      = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})[./](\d{4})\b`)
	reDateCompact = regexp.MustCompile(`\b(\d{4})(\d{2})(\d{2})\b`)
)

// NormalizeDate converts a date in any of the supported notations to ISO
// YYYY-MM-DD. Forms are tried in a fixed order: Hangul, Japanese era, kanji,
// English month names, dotted/slashed/dashed year-first, European day-first
// and compact yyyymmdd. The first form whose match is a valid calendar date
// wins.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(common.FoldWidth(raw))
	if s == "" {
		return "", false
	}

	if m := reDateHangul.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	if m := reDateEra.FindStringSubmatch(s); m != nil {
		n := 1
		if m[2] != "元" {
			n, _ = strconv.Atoi(m[2])
		}
		if iso, ok := isoDate(strconv.Itoa(eraOffsets[m[1]]+n), m[3], m[4]); ok {
			return iso, true
		}
	}
	if m := reDateKanji.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	if m := reDateUS.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[3], monthNumber(m[1]), m[2]); ok {
			return iso, true
		}
	}
	if m := reDateDMY.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[3], monthNumber(m[2]), m[1]); ok {
			return iso, true
		}
	}
	if m := reDateYMD.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	if m := reDateEU.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[3], m[2], m[1]); ok {
			return iso, true
		}
	}
	if m := reDateCompact.FindStringSubmatch(s); m != nil {
		if iso, ok := isoDate(m[1], m[2], m[3]); ok {
			return iso, true
		}
	}
	return "", false
}

func monthNumber(name string) string {
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	return strconv.Itoa(months[key])
}

// isoDate validates y-m-d against the calendar and formats it.
func isoDate(ys, ms, ds string) (string, bool) {
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	d, err3 := strconv.Atoi(ds)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if y < 1900 || y > 2100 || m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

//Personal.AI order the ending
