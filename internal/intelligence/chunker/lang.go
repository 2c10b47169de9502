package chunker

import (
	"strings"
	"unicode"
)

var (
	germanWords = []string{" und ", " der ", " die ", " das ", " wobei ", " mit ", " nach anspruch", "verfahren"}
	frenchWords = []string{" le ", " la ", " les ", " des ", " et ", " une ", " selon ", "procédé"}
)

// DetectLanguage guesses a language code from script statistics: Hangul
// means ko, kana means ja, other CJK ideographs mean zh. Latin text is de or
// fr when diacritics and function words say so, otherwise en.
func DetectLanguage(text string) string {
	var letters, hangul, kana, han, de, fr int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		}
		switch r {
		case 'ä', 'ö', 'ü', 'ß', 'Ä', 'Ö', 'Ü':
			de++
		case 'é', 'è', 'ê', 'à', 'ç', 'ù', 'â', 'î', 'ô', 'œ', 'É', 'È', 'À', 'Ç':
			fr++
		}
	}
	if letters == 0 {
		return "en"
	}
	if hangul*10 >= letters {
		return "ko"
	}
	if (kana+han)*10 >= letters {
		if kana > 0 {
			return "ja"
		}
		return "zh"
	}

	lower := " " + strings.ToLower(text) + " "
	for _, w := range germanWords {
		de += strings.Count(lower, w)
	}
	for _, w := range frenchWords {
		fr += strings.Count(lower, w)
	}
	switch {
	case de > fr && de > 0:
		return "de"
	case fr > de && fr > 0:
		return "fr"
	default:
		return "en"
	}
}

//Personal.AI order the ending
