// Package explain generates human-readable explanations for risk assessments.
//
// The template generator is deterministic: identical inputs yield
// byte-identical output, so callers can cache explanations indefinitely.
// Richer backends (e.g. an LLM provider) plug in behind domain.Generator and
// are conformance-tested against this implementation.
package explain

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/risk"
)

// TemplateGenerator renders explanations from fixed templates.
// It implements domain.Generator and is the default backend.
type TemplateGenerator struct {
	scorer *risk.Scorer
}

// NewTemplateGenerator creates the deterministic template backend.
// The scorer supplies the risk level classification and the amount baseline
// so the explanation can never disagree with the assessment.
func NewTemplateGenerator(scorer *risk.Scorer) *TemplateGenerator {
	return &TemplateGenerator{scorer: scorer}
}

// Generate renders an explanation for a transaction's assessment.
func (g *TemplateGenerator) Generate(tx *domain.Transaction, score float64, factors []domain.FactorCode) *domain.Explanation {
	level := g.scorer.Classify(score)

	// Confidence grows with factor count and score, bounded to [50, 99].
	confidence := 50 + 12*len(factors) + int(math.Round(score*20))
	if confidence > 99 {
		confidence = 99
	}

	riskFactors := make([]string, 0, len(factors))
	for i, factor := range factors {
		line := fmt.Sprintf("%d. %s - %s", i+1, factorTitle(factor), g.renderFactor(factor, tx))
		riskFactors = append(riskFactors, line)
	}

	var summary string
	switch len(factors) {
	case 0:
		summary = "No fraud indicators detected for this transaction."
	case 1:
		summary = "This transaction triggered 1 fraud indicator."
	default:
		summary = fmt.Sprintf("This transaction triggered %d fraud indicator(s).", len(factors))
	}

	return &domain.Explanation{
		RiskLevel:         level,
		Confidence:        confidence,
		Summary:           summary,
		RiskFactors:       riskFactors,
		RecommendedAction: recommendedActions[level],
	}
}

// HealthCheck reports availability; the template backend has no dependencies.
func (g *TemplateGenerator) HealthCheck(ctx context.Context) bool {
	return true
}

// renderFactor substitutes transaction-specific values into the factor's
// template. Unrecognized codes get a generic description rather than failing.
func (g *TemplateGenerator) renderFactor(factor domain.FactorCode, tx *domain.Transaction) string {
	switch factor {
	case domain.FactorNewPayee:
		return descNewPayee
	case domain.FactorUnusualTiming:
		return fmt.Sprintf(descUnusualTiming, tx.Timestamp.Hour(), tx.Timestamp.Minute())
	case domain.FactorAmountSpike:
		avg := g.scorer.Config().AvgAmount
		multiplier := math.Round(tx.Amount/avg*10) / 10
		return fmt.Sprintf(descAmountSpike, int(tx.Amount), multiplier, int(avg))
	case domain.FactorSuspiciousReference:
		return descSuspiciousReference
	default:
		return descUnknown
	}
}

// factorTitle converts a factor code to a human title, e.g.
// NEW_PAYEE -> "New Payee".
func factorTitle(factor domain.FactorCode) string {
	words := strings.Split(strings.ToLower(string(factor)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
