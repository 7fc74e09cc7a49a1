package domain

import "context"

// Pattern is a catalog entry describing a known fraud scheme.
type Pattern struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	Severity       string       `json:"severity"` // low, medium, high, critical
	TriggerFactors []FactorCode `json:"triggerFactors"`
	Keywords       []string     `json:"keywords"`
	Action         string       `json:"recommendedAction"`
}

// PatternMatch is a catalog pattern matched against a transaction's factors.
type PatternMatch struct {
	PatternID         string  `json:"patternId"`
	PatternName       string  `json:"patternName"`
	Description       string  `json:"description"`
	MatchScore        float64 `json:"matchScore"` // 0.0 to 1.0
	RecommendedAction string  `json:"recommendedAction"`
	Category          string  `json:"category,omitempty"`
	Severity          string  `json:"severity,omitempty"`
}

// PatternContext carries the transaction details used for keyword matching.
type PatternContext struct {
	Amount    float64 `json:"amount"`
	Payee     string  `json:"payee"`
	Reference string  `json:"reference"`
	Timestamp string  `json:"timestamp"`
}

// PatternProvider matches detected risk factors against a fraud pattern
// catalog. The matching algorithm is independent of the catalog's source;
// implementations only differ in where the catalog comes from.
type PatternProvider interface {
	// FindMatchingPatterns returns matches sorted by score descending.
	// An empty factor list yields an empty result, never an error.
	FindMatchingPatterns(ctx context.Context, factors []FactorCode, txCtx PatternContext) ([]PatternMatch, error)

	// HealthCheck reports whether the catalog is available.
	HealthCheck(ctx context.Context) bool
}

// PatternConfig holds configuration for pattern provider initialization.
type PatternConfig struct {
	// Provider is the catalog source: "memory" or "file"
	Provider string

	// File path for the file-backed provider
	CatalogPath string
}
