package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kashvi5907-create/legalease/backend/model"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
)

// promptContextLimit caps how much document text is sent to the model.
const promptContextLimit = 8000

// clipContext bounds text to promptContextLimit bytes, backing off so the
// cut never lands inside a multi-byte rune.
func clipContext(s string) string {
	if len(s) <= promptContextLimit {
		return s
	}
	cut := promptContextLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// deadlineSchema validates the shape the model was asked for: an array of
// objects with a string obligation and an optional string date. The date
// pattern itself is deliberately NOT enforced here; filtering on YYYY-MM-DD
// happens at the calendar-sync boundary.
var deadlineSchema = jsonschema.MustCompileString("deadlines.json", `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"obligation": {"type": "string"},
			"date": {"type": "string"}
		},
		"required": ["obligation"]
	}
}`)

// DeadlineExtractor asks the language model for structured deadlines and
// parses the reply. Any failure along the way degrades to an empty list;
// extraction never raises to its caller.
type DeadlineExtractor struct {
	llm *LLMService
}

func NewDeadlineExtractor(llm *LLMService) *DeadlineExtractor {
	return &DeadlineExtractor{llm: llm}
}

// Extract returns the validated deadlines found in the text. The returned
// slice is always non-nil so an attached empty result is distinguishable
// from "never extracted".
func (d *DeadlineExtractor) Extract(ctx context.Context, fullText string) []model.Deadline {
	prompt := buildDeadlinePrompt(fullText, time.Now())

	raw, err := d.llm.Complete(ctx, prompt, d.llm.cfg.Temperature, d.llm.cfg.MaxTokens)
	if err != nil {
		logger.Warn(ctx, "deadline extraction failed, returning empty list", "error", err)
		return []model.Deadline{}
	}

	deadlines, err := parseDeadlines(raw)
	if err != nil {
		logger.Warn(ctx, "deadline response not parseable, returning empty list",
			"error", err,
			"response_len", len(raw),
		)
		return []model.Deadline{}
	}

	logger.Info(ctx, "deadlines extracted", "count", len(deadlines))
	return deadlines
}

// buildDeadlinePrompt mirrors the structured-output contract: JSON array of
// {obligation, date}, relative dates resolved against today as the assumed
// signing date, absolute dates normalized, unresolvable dates omitted.
func buildDeadlinePrompt(fullText string, now time.Time) string {
	contextText := clipContext(fullText)

	return fmt.Sprintf(`Analyze the following contract text and extract all specific deadlines, notice periods, expiration dates, and payment due dates.

Return the result ONLY as a JSON array of objects. Format:
[
  {
    "obligation": "Short description of the task or event",
    "date": "YYYY-MM-DD"
  }
]

Rules:
1. If a date is absolute (e.g., "January 15, 2024"), convert to YYYY-MM-DD.
2. If a date is relative (e.g., "30 days after signing"), calculate the estimated date assuming the signing date is TODAY (%s).
3. If no specific date can be determined, DO NOT include it in the list.
4. Return ONLY the JSON array. No markdown, no explanations.

Contract Text (Snippet):
%s`, now.Format("2006-01-02"), contextText)
}

// parseDeadlines strips code fences, parses the JSON array, and validates
// it. When strict validation fails it falls back to salvaging the items
// that do fit the shape; a response that is not a JSON array at all is an
// error.
func parseDeadlines(raw string) ([]model.Deadline, error) {
	cleaned := stripCodeFence(raw)

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, fmt.Errorf("decode deadline response: %w", err)
	}

	if err := deadlineSchema.Validate(generic); err == nil {
		var deadlines []model.Deadline
		if err := json.Unmarshal([]byte(cleaned), &deadlines); err != nil {
			return nil, fmt.Errorf("decode validated deadlines: %w", err)
		}
		if deadlines == nil {
			deadlines = []model.Deadline{}
		}
		return deadlines, nil
	}

	// Lenient pass: keep well-formed items, drop the rest.
	items, ok := generic.([]any)
	if !ok {
		return nil, fmt.Errorf("deadline response is not a JSON array")
	}
	deadlines := make([]model.Deadline, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		obligation, ok := obj["obligation"].(string)
		if !ok || strings.TrimSpace(obligation) == "" {
			continue
		}
		date, _ := obj["date"].(string)
		deadlines = append(deadlines, model.Deadline{
			Obligation: obligation,
			Date:       date,
		})
	}
	return deadlines, nil
}
