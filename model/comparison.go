package model

// Comparison winner labels.
const (
	WinnerA   = "Contract A"
	WinnerB   = "Contract B"
	WinnerTie = "Tie"
)

// ComparisonSide summarizes one contract in a head-to-head comparison.
type ComparisonSide struct {
	Filename  string `json:"filename"`
	RiskCount int    `json:"risk_count"`
}

// CategoryRow is one row of the comparison table: whether each side
// contains the category.
type CategoryRow struct {
	Category string `json:"category"`
	FoundA   bool   `json:"found_a"`
	FoundB   bool   `json:"found_b"`
}

// CommonRisk pairs the first snippet from each side for a category present
// in both contracts.
type CommonRisk struct {
	Category string `json:"category"`
	SnippetA string `json:"snippet_a"`
	SnippetB string `json:"snippet_b"`
}

// Comparison is the head-to-head result for two contracts. Categories is
// the alphabetical union of both sides' matched categories.
type Comparison struct {
	ContractA   ComparisonSide `json:"contract_a"`
	ContractB   ComparisonSide `json:"contract_b"`
	Winner      string         `json:"winner"`
	Categories  []CategoryRow  `json:"categories"`
	CommonRisks []CommonRisk   `json:"common_risks,omitempty"`
}
