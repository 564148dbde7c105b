package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func newTestDeadlineExtractor(fake *fakeChatModel) *DeadlineExtractor {
	return NewDeadlineExtractor(NewLLMServiceWithModel(testLLMConfig(), fake))
}

func TestExtractDeadlinesFencedJSON(t *testing.T) {
	fake := &fakeChatModel{response: "```json\n[{\"obligation\":\"Pay invoice\",\"date\":\"2024-03-01\"}]\n```"}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "contract text")
	if len(deadlines) != 1 {
		t.Fatalf("Expected 1 deadline, got %d", len(deadlines))
	}
	if deadlines[0].Obligation != "Pay invoice" {
		t.Errorf("Expected obligation 'Pay invoice', got %q", deadlines[0].Obligation)
	}
	if deadlines[0].Date != "2024-03-01" {
		t.Errorf("Expected date 2024-03-01, got %q", deadlines[0].Date)
	}
}

func TestExtractDeadlinesBareJSON(t *testing.T) {
	fake := &fakeChatModel{response: `[{"obligation":"Renew lease","date":"2025-01-15"},{"obligation":"Give notice"}]`}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "contract text")
	if len(deadlines) != 2 {
		t.Fatalf("Expected 2 deadlines, got %d", len(deadlines))
	}
	// A missing date is stored as-is; filtering happens at the sync boundary.
	if deadlines[1].Date != "" {
		t.Errorf("Expected empty date preserved, got %q", deadlines[1].Date)
	}
}

func TestExtractDeadlinesNotJSON(t *testing.T) {
	fake := &fakeChatModel{response: "Sorry, I cannot help."}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "contract text")
	if deadlines == nil {
		t.Fatal("Expected non-nil empty list")
	}
	if len(deadlines) != 0 {
		t.Errorf("Expected empty list for prose response, got %d items", len(deadlines))
	}
}

func TestExtractDeadlinesModelError(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("network timeout")}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "contract text")
	if deadlines == nil || len(deadlines) != 0 {
		t.Errorf("Expected empty list on model error, got %v", deadlines)
	}
}

func TestExtractDeadlinesNonArrayJSON(t *testing.T) {
	fake := &fakeChatModel{response: `{"obligation":"Pay","date":"2024-01-01"}`}
	extractor := newTestDeadlineExtractor(fake)

	if got := extractor.Extract(context.Background(), "text"); len(got) != 0 {
		t.Errorf("Expected empty list for non-array response, got %v", got)
	}
}

func TestExtractDeadlinesSalvagesMixedArray(t *testing.T) {
	// One valid item, one with a numeric obligation, one bare string.
	fake := &fakeChatModel{response: `[{"obligation":"Pay invoice","date":"2024-03-01"},{"obligation":42},"noise"]`}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "text")
	if len(deadlines) != 1 {
		t.Fatalf("Expected 1 salvaged deadline, got %d", len(deadlines))
	}
	if deadlines[0].Obligation != "Pay invoice" {
		t.Errorf("Expected the valid item kept, got %q", deadlines[0].Obligation)
	}
}

func TestExtractDeadlinesEmptyArray(t *testing.T) {
	fake := &fakeChatModel{response: "[]"}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "text")
	if deadlines == nil {
		t.Fatal("Expected non-nil empty list for empty array")
	}
	if len(deadlines) != 0 {
		t.Errorf("Expected 0 deadlines, got %d", len(deadlines))
	}
}

func TestExtractDeadlinesUsesConfiguredSampling(t *testing.T) {
	fake := &fakeChatModel{response: "[]"}
	cfg := testLLMConfig()
	cfg.Temperature = 0.7
	cfg.MaxTokens = 900
	extractor := NewDeadlineExtractor(NewLLMServiceWithModel(cfg, fake))

	extractor.Extract(context.Background(), "contract text")

	if fake.lastOpts == nil || fake.lastOpts.Temperature == nil {
		t.Fatal("Expected temperature forwarded to the model")
	}
	if *fake.lastOpts.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", *fake.lastOpts.Temperature)
	}
	if fake.lastOpts.MaxTokens == nil || *fake.lastOpts.MaxTokens != 900 {
		t.Error("Expected max tokens 900 forwarded to the model")
	}
}

func TestBuildDeadlinePrompt(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	longText := strings.Repeat("clause ", 2000) // > 8000 chars

	prompt := buildDeadlinePrompt(longText, now)

	if !strings.Contains(prompt, "TODAY (2026-09-01)") {
		t.Error("Expected today's date as assumed signing date")
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Error("Expected strict output-format directive")
	}
	if !strings.Contains(prompt, "YYYY-MM-DD") {
		t.Error("Expected date-normalization rule")
	}
	if len(prompt) > promptContextLimit+1500 {
		t.Errorf("Expected context capped at %d chars, prompt is %d", promptContextLimit, len(prompt))
	}
}

func TestBuildDeadlinePromptUnicodeBoundary(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	longText := strings.Repeat("日", promptContextLimit)

	prompt := buildDeadlinePrompt(longText, now)

	if !utf8.ValidString(prompt) {
		t.Error("Expected prompt to stay valid UTF-8 after truncation")
	}
}

func TestExtractDeadlinesPlainFence(t *testing.T) {
	fake := &fakeChatModel{response: "```\n[{\"obligation\":\"File report\",\"date\":\"2024-12-31\"}]\n```"}
	extractor := newTestDeadlineExtractor(fake)

	deadlines := extractor.Extract(context.Background(), "text")
	if len(deadlines) != 1 || deadlines[0].Obligation != "File report" {
		t.Errorf("Expected one deadline from plain-fenced JSON, got %v", deadlines)
	}
}
