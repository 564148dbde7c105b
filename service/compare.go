package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/kashvi5907-create/legalease/backend/model"
)

// Comparer runs extraction and red-flag scanning over two contracts and
// builds the head-to-head result. Comparison never stores anything in the
// workspace; both sides must extract successfully or no result is produced.
type Comparer struct {
	extractor *Extractor
	keywords  []string
}

func NewComparer(extractor *Extractor, keywords []string) *Comparer {
	return &Comparer{extractor: extractor, keywords: keywords}
}

// Compare analyzes both documents independently. The winner is the side
// with fewer distinct risk categories; equal counts are a tie. Risk scores
// are intentionally not consulted, only category counts.
func (c *Comparer) Compare(ctx context.Context, nameA string, dataA []byte, nameB string, dataB []byte) (*model.Comparison, error) {
	resA, err := c.extractor.Extract(ctx, dataA)
	if err != nil {
		return nil, fmt.Errorf("contract A: %w", err)
	}
	resB, err := c.extractor.Extract(ctx, dataB)
	if err != nil {
		return nil, fmt.Errorf("contract B: %w", err)
	}

	flagsA := ScanRedFlags(resA.Text, c.keywords)
	flagsB := ScanRedFlags(resB.Text, c.keywords)

	winner := model.WinnerTie
	switch {
	case len(flagsA) < len(flagsB):
		winner = model.WinnerA
	case len(flagsB) < len(flagsA):
		winner = model.WinnerB
	}

	union := make(map[string]struct{}, len(flagsA)+len(flagsB))
	for k := range flagsA {
		union[k] = struct{}{}
	}
	for k := range flagsB {
		union[k] = struct{}{}
	}
	categories := make([]string, 0, len(union))
	for k := range union {
		categories = append(categories, k)
	}
	sort.Strings(categories)

	comparison := &model.Comparison{
		ContractA: model.ComparisonSide{Filename: nameA, RiskCount: len(flagsA)},
		ContractB: model.ComparisonSide{Filename: nameB, RiskCount: len(flagsB)},
		Winner:    winner,
	}

	for _, category := range categories {
		_, inA := flagsA[category]
		_, inB := flagsB[category]
		comparison.Categories = append(comparison.Categories, model.CategoryRow{
			Category: category,
			FoundA:   inA,
			FoundB:   inB,
		})
		if inA && inB {
			comparison.CommonRisks = append(comparison.CommonRisks, model.CommonRisk{
				Category: category,
				SnippetA: flagsA[category][0],
				SnippetB: flagsB[category][0],
			})
		}
	}

	return comparison, nil
}
