package model

import (
	"sort"
	"time"
)

// RedFlags maps a risk-category name to the context snippets where the
// category keyword was found. Snippet order follows first occurrence in the
// text; duplicate snippets are dropped.
type RedFlags map[string][]string

// Categories returns the matched category names in alphabetical order.
func (r RedFlags) Categories() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Deadline is one obligation extracted by the AI. Date is YYYY-MM-DD when
// the model could resolve it, and may be empty or malformed otherwise; the
// calendar-sync boundary filters on the pattern, not extraction.
type Deadline struct {
	Obligation string `json:"obligation"`
	Date       string `json:"date,omitempty"`
}

// Document is one analyzed contract, keyed in the workspace by its uploaded
// filename. FullText, PageCount, RedFlags and RiskScore are fixed at
// ingestion; Deadlines is attached later, at most once.
type Document struct {
	Name       string     `json:"name"`
	FullText   string     `json:"full_text"`
	PageCount  int        `json:"page_count"`
	RedFlags   RedFlags   `json:"found_red_flags"`
	RiskScore  int        `json:"risk_score"`
	Deadlines  []Deadline `json:"deadlines,omitempty"`
	OCRUsed    bool       `json:"ocr_used"`
	Warnings   []string   `json:"warnings,omitempty"`
	ArchiveURL string     `json:"archive_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HasDeadlines reports whether the one-shot deadline extraction already ran.
func (d *Document) HasDeadlines() bool {
	return d.Deadlines != nil
}

// Clone returns a copy safe to read after the workspace lock is released.
// Deadlines is the only field mutated after ingestion, so it is the only
// one that needs its own backing storage; nil stays nil to preserve the
// attached/unattached distinction.
func (d *Document) Clone() *Document {
	c := *d
	if d.Deadlines != nil {
		c.Deadlines = append([]Deadline(nil), d.Deadlines...)
	}
	return &c
}
