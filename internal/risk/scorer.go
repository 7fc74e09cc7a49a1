// Package risk implements the deterministic fraud risk scorer.
//
// Scoring is rule-based on purpose: every factor is a boolean predicate over
// the transaction's own attributes, the score is the sum of the fired
// factors' weights, and identical inputs always produce identical output.
// Reproducibility and explainability win over sophistication here.
package risk

import (
	"strings"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

// Scorer evaluates the fraud indicators for a transaction.
// It is stateless and safe for concurrent use.
type Scorer struct {
	cfg domain.RiskConfig
}

// NewScorer creates a scorer with the given parameters.
// The configuration must already be validated.
func NewScorer(cfg domain.RiskConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score evaluates the four fraud indicators in their fixed order and returns
// the clamped risk score plus the list of triggered factor codes.
//
// The factor order (new payee, timing, amount, reference) is load-bearing:
// downstream explanation numbering follows it. The score is the additive sum
// of fired weights, clamped at 1.0 but never renormalized, so distinct
// factor sets can tie at the maximum.
func (s *Scorer) Score(tx *domain.Transaction) (float64, []domain.FactorCode) {
	score := 0.0
	var factors []domain.FactorCode

	// Factor 1: first-ever transfer to this payee
	if tx.PayeeIsNew {
		score += s.cfg.WeightNewPayee
		factors = append(factors, domain.FactorNewPayee)
	}

	// Factor 2: outside business hours, in the timestamp's own offset
	hour := tx.Timestamp.Hour()
	if hour < s.cfg.BusinessHoursStart || hour >= s.cfg.BusinessHoursEnd {
		score += s.cfg.WeightUnusualTiming
		factors = append(factors, domain.FactorUnusualTiming)
	}

	// Factor 3: amount spike above the baseline (strict inequality)
	if tx.Amount > s.cfg.AvgAmount*s.cfg.SpikeMultiplier {
		score += s.cfg.WeightAmountSpike
		factors = append(factors, domain.FactorAmountSpike)
	}

	// Factor 4: urgency markers in the reference text
	if strings.Contains(strings.ToUpper(tx.Reference), "URGENT") {
		score += s.cfg.WeightSuspiciousReference
		factors = append(factors, domain.FactorSuspiciousReference)
	}

	if score > 1.0 {
		score = 1.0
	}

	return score, factors
}

// Classify maps a risk score to its level. Bands are closed on the lower
// end: a score exactly at a threshold belongs to the higher band.
func (s *Scorer) Classify(score float64) domain.RiskLevel {
	switch {
	case score >= s.cfg.HighThreshold:
		return domain.RiskHigh
	case score >= s.cfg.MediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// Config returns the scorer's parameters.
func (s *Scorer) Config() domain.RiskConfig {
	return s.cfg
}
