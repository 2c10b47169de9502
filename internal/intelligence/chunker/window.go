package chunker

import (
	"regexp"
	"strings"
)

var reParagraphBreak = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range reParagraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SlidingWindow cuts text into windows of targetTokens*4 runes that start
// every (window - overlap) runes. An overlap that would stall the window is
// replaced by a tenth of the window. The last window ends at the end of
// text.
func SlidingWindow(text string, targetTokens, overlapTokens int) []string {
	window, step := windowGeometry(targetTokens, overlapTokens)
	runes := []rune(text)
	n := len(runes)
	var out []string
	for i := 0; i < n; i += step {
		j := i + window
		if j > n {
			j = n
		}
		out = append(out, string(runes[i:j]))
	}
	return out
}

// windowGeometry returns the window and step sizes in runes.
func windowGeometry(targetTokens, overlapTokens int) (window, step int) {
	window = targetTokens * 4
	if window < 1 {
		window = 1
	}
	overlap := overlapTokens * 4
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= window {
		overlap = window / 10
	}
	step = window - overlap
	if step < 1 {
		step = 1
	}
	return window, step
}

//Personal.AI order the ending
