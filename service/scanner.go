package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kashvi5907-create/legalease/backend/model"
)

// snippetWindow is the number of characters of context captured on each
// side of a keyword match.
const snippetWindow = 200

// maxRiskScore caps the risk score regardless of how many categories match.
const maxRiskScore = 10

// ScanRedFlags finds every case-insensitive literal occurrence of each
// keyword and collects a windowed snippet per match. Keywords with no
// matches are absent from the result; duplicate snippets within a category
// are dropped while preserving first-occurrence order.
func ScanRedFlags(fullText string, keywords []string) model.RedFlags {
	found := make(model.RedFlags)
	// Lowercasing can change a rune's byte length, so matches are located in
	// the folded text and translated back through the offset table before
	// slicing the original.
	lower, offsets := foldOffsets(fullText)

	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if kw == "" {
			continue
		}

		for from := 0; ; {
			idx := strings.Index(lower[from:], kw)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(kw)
			from = end

			snippet := makeSnippet(fullText, offsets[start], offsets[end])
			if !containsString(found[keyword], snippet) {
				found[keyword] = append(found[keyword], snippet)
			}
		}
	}

	return found
}

// foldOffsets lowercases the text rune by rune and records, for every byte
// of the folded form, the starting offset of the source rune it came from.
// A final extra entry maps the end of the folded text to len(text) so match
// ends always translate to a valid boundary.
func foldOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		lr := unicode.ToLower(r)
		for n := utf8.RuneLen(lr); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))
	return b.String(), offsets
}

// makeSnippet extracts the context window around a match, trims surrounding
// whitespace, and marks truncation with ellipses.
func makeSnippet(text string, matchStart, matchEnd int) string {
	ctxStart := matchStart - snippetWindow
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := matchEnd + snippetWindow
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	// The window edges may land inside a multi-byte rune.
	for ctxStart > 0 && !utf8.RuneStart(text[ctxStart]) {
		ctxStart--
	}
	for ctxEnd < len(text) && !utf8.RuneStart(text[ctxEnd]) {
		ctxEnd++
	}

	snippet := strings.TrimSpace(text[ctxStart:ctxEnd])
	if ctxStart > 0 {
		snippet = "..." + snippet
	}
	if ctxEnd < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}

// RiskScore maps the red-flag result to a score in [1,10]. Only the number
// of distinct matched categories counts; snippet volume inside a category
// does not change the score.
func RiskScore(flags model.RedFlags) int {
	score := 1 + 2*len(flags)
	if score > maxRiskScore {
		score = maxRiskScore
	}
	return score
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
