package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kashvi5907-create/legalease/backend/config"
)

func TestScanRedFlagsBasicScenario(t *testing.T) {
	text := "This Agreement provides for Automatic Renewal unless Termination occurs."
	flags := ScanRedFlags(text, config.DefaultKeywords)

	if len(flags) != 2 {
		t.Fatalf("Expected 2 categories, got %d: %v", len(flags), flags.Categories())
	}
	if len(flags["Automatic Renewal"]) != 1 {
		t.Errorf("Expected 1 snippet for Automatic Renewal, got %d", len(flags["Automatic Renewal"]))
	}
	if len(flags["Termination"]) != 1 {
		t.Errorf("Expected 1 snippet for Termination, got %d", len(flags["Termination"]))
	}
	if _, ok := flags["Fees"]; ok {
		t.Error("Expected no Fees category for zero matches")
	}

	if score := RiskScore(flags); score != 5 {
		t.Errorf("Expected risk score 5, got %d", score)
	}
}

func TestScanRedFlagsCaseInsensitive(t *testing.T) {
	// Matches far enough apart that their context windows differ.
	padding := strings.Repeat("x", 450)
	text := "All FEES are due monthly. " + padding + " Additional fees may apply."
	flags := ScanRedFlags(text, []string{"Fees"})

	snippets := flags["Fees"]
	if len(snippets) != 2 {
		t.Fatalf("Expected 2 snippets for both casings, got %d", len(snippets))
	}
}

func TestScanRedFlagsSnippetWindowAndEllipsis(t *testing.T) {
	padding := strings.Repeat("a", 500)
	text := padding + " Termination " + padding
	flags := ScanRedFlags(text, []string{"Termination"})

	snippets := flags["Termination"]
	if len(snippets) != 1 {
		t.Fatalf("Expected 1 snippet, got %d", len(snippets))
	}
	snippet := snippets[0]

	if !strings.HasPrefix(snippet, "...") {
		t.Error("Expected left ellipsis for truncated snippet")
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Error("Expected right ellipsis for truncated snippet")
	}

	// After stripping markers, the snippet is a literal substring of the
	// text and contains the keyword.
	core := strings.TrimSuffix(strings.TrimPrefix(snippet, "..."), "...")
	if !strings.Contains(text, core) {
		t.Error("Expected snippet core to be a literal substring of the text")
	}
	if !strings.Contains(strings.ToLower(core), "termination") {
		t.Error("Expected snippet to contain the keyword")
	}
}

func TestScanRedFlagsNoEllipsisAtBoundaries(t *testing.T) {
	text := "Termination is effective immediately."
	flags := ScanRedFlags(text, []string{"Termination"})

	snippet := flags["Termination"][0]
	if strings.HasPrefix(snippet, "...") || strings.HasSuffix(snippet, "...") {
		t.Errorf("Expected no ellipsis when the window covers the whole text, got %q", snippet)
	}
	if snippet != text {
		t.Errorf("Expected snippet %q, got %q", text, snippet)
	}
}

func TestScanRedFlagsDeduplicatesSnippets(t *testing.T) {
	// Two matches close enough that both windows clamp to the whole text,
	// yielding identical snippets.
	text := "Fees and more Fees"
	flags := ScanRedFlags(text, []string{"Fees"})

	if len(flags["Fees"]) != 1 {
		t.Errorf("Expected duplicate snippets suppressed, got %d", len(flags["Fees"]))
	}
}

func TestScanRedFlagsFoldedLengthChanges(t *testing.T) {
	checkSnippet := func(t *testing.T, flags map[string][]string) {
		t.Helper()
		snippets := flags["Fees"]
		if len(snippets) != 1 {
			t.Fatalf("Expected 1 snippet, got %d", len(snippets))
		}
		if !strings.Contains(snippets[0], "Fees") {
			t.Errorf("Expected snippet to contain the keyword, got %q", snippets[0])
		}
		if !utf8.ValidString(snippets[0]) {
			t.Error("Expected snippet to be valid UTF-8")
		}
	}

	t.Run("lowercase form longer", func(t *testing.T) {
		// U+023A is 2 bytes; its lowercase U+2C65 is 3. The folded text is
		// longer than the original, so folded offsets overrun it.
		text := strings.Repeat("Ⱥ", 300) + " Fees apply."
		checkSnippet(t, ScanRedFlags(text, []string{"Fees"}))
	})

	t.Run("lowercase form shorter", func(t *testing.T) {
		// U+0130 is 2 bytes; its lowercase is plain ASCII i. The folded text
		// is shorter, so folded offsets point before the match.
		text := strings.Repeat("İ", 300) + " Fees apply."
		checkSnippet(t, ScanRedFlags(text, []string{"Fees"}))
	})
}

func TestScanRedFlagsAdvancesPastMatch(t *testing.T) {
	// A keyword that overlaps itself counts once per non-overlapping
	// occurrence. Padding keeps the two would-be windows distinct so a
	// regression is not hidden by snippet deduplication.
	text := "aaa " + strings.Repeat("x", 300)
	flags := ScanRedFlags(text, []string{"aa"})

	if len(flags["aa"]) != 1 {
		t.Errorf("Expected one non-overlapping match, got %d", len(flags["aa"]))
	}
}

func TestScanRedFlagsOverlappingKeywords(t *testing.T) {
	// A keyword occurring inside another keyword's window is scanned
	// independently.
	text := "Termination triggers additional Fees for the client."
	flags := ScanRedFlags(text, []string{"Termination", "Fees"})

	if len(flags) != 2 {
		t.Fatalf("Expected both overlapping categories, got %v", flags.Categories())
	}
}

func TestScanRedFlagsEmptyText(t *testing.T) {
	flags := ScanRedFlags("", config.DefaultKeywords)
	if len(flags) != 0 {
		t.Errorf("Expected no matches in empty text, got %v", flags.Categories())
	}
}

func TestRiskScoreBounds(t *testing.T) {
	tests := []struct {
		name       string
		categories int
		expected   int
	}{
		{"no matches", 0, 1},
		{"one category", 1, 3},
		{"two categories", 2, 5},
		{"four categories", 4, 9},
		{"five categories clamps", 5, 10},
		{"many categories clamps", 12, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := make(map[string][]string)
			for i := 0; i < tt.categories; i++ {
				flags[strings.Repeat("k", i+1)] = []string{"snippet"}
			}
			if score := RiskScore(flags); score != tt.expected {
				t.Errorf("Expected score %d, got %d", tt.expected, score)
			}
		})
	}
}

func TestRiskScoreIgnoresSnippetCounts(t *testing.T) {
	one := map[string][]string{"Fees": {"a"}}
	many := map[string][]string{"Fees": {"a", "b", "c", "d"}}

	if RiskScore(one) != RiskScore(many) {
		t.Error("Expected snippet count within a category not to affect the score")
	}
}
