package domain

import "context"

// FactorCode identifies one of the fixed fraud indicators.
type FactorCode string

// Factor codes, in their fixed evaluation order.
const (
	FactorNewPayee            FactorCode = "NEW_PAYEE"
	FactorUnusualTiming       FactorCode = "UNUSUAL_TIMING"
	FactorAmountSpike         FactorCode = "AMOUNT_SPIKE"
	FactorSuspiciousReference FactorCode = "SUSPICIOUS_REFERENCE"
)

// RiskLevel is the coarse three-band classification of a risk score.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Explanation is the human-readable rendering of a risk assessment.
// It is a pure function of the transaction and its assessment; repeated
// generation with identical inputs yields byte-identical output, so callers
// may cache it indefinitely.
type Explanation struct {
	RiskLevel RiskLevel `json:"riskLevel"`

	// Confidence is an integer percentage in [50, 99]. It expresses how
	// certain the generator treats its own assessment, not a statistical
	// confidence interval.
	Confidence int `json:"confidence"`

	// Summary is the one-sentence overview.
	Summary string `json:"explanation"`

	// RiskFactors are the per-factor descriptions, numbered 1..N in
	// the order the factors fired.
	RiskFactors []string `json:"riskFactors"`

	RecommendedAction string `json:"recommendedAction"`
}

// Generator produces explanations for risk assessments.
// The deterministic template generator is the default implementation and the
// conformance reference for any richer backend (e.g. an LLM provider).
type Generator interface {
	// Generate renders an explanation for the transaction's assessment.
	Generate(tx *Transaction, score float64, factors []FactorCode) *Explanation

	// HealthCheck reports whether the generator is available.
	HealthCheck(ctx context.Context) bool
}
