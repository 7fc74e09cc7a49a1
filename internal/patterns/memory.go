package patterns

import (
	"context"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

// MemoryProvider matches against a built-in catalog of common UK payment
// fraud schemes. It is the default provider and needs no external files.
type MemoryProvider struct {
	catalog []domain.Pattern
}

// NewMemoryProvider creates a provider over the built-in catalog.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{catalog: DefaultCatalog()}
}

// FindMatchingPatterns matches the fired factors against the catalog.
func (p *MemoryProvider) FindMatchingPatterns(ctx context.Context, factors []domain.FactorCode, txCtx domain.PatternContext) ([]domain.PatternMatch, error) {
	return matchCatalog(p.catalog, factors, txCtx), nil
}

// HealthCheck reports catalog availability. The built-in catalog is always
// available.
func (p *MemoryProvider) HealthCheck(ctx context.Context) bool {
	return len(p.catalog) > 0
}

// DefaultCatalog returns the built-in fraud pattern catalog.
func DefaultCatalog() []domain.Pattern {
	return []domain.Pattern{
		{
			ID:          "invoice_redirect",
			Name:        "Invoice Redirection Fraud",
			Description: "Fraudster impersonates a supplier and requests payment to a different account.",
			Category:    "business_email_compromise",
			Severity:    "high",
			TriggerFactors: []domain.FactorCode{
				domain.FactorNewPayee,
				domain.FactorAmountSpike,
			},
			Keywords: []string{"invoice", "payment", "account", "bank details", "updated"},
			Action:   "Contact the supplier using known contact details to verify the payment request.",
		},
		{
			ID:          "ceo_fraud",
			Name:        "CEO/Executive Impersonation",
			Description: "Fraudster impersonates a company executive to authorize urgent payments.",
			Category:    "business_email_compromise",
			Severity:    "critical",
			TriggerFactors: []domain.FactorCode{
				domain.FactorSuspiciousReference,
				domain.FactorUnusualTiming,
			},
			Keywords: []string{"urgent", "confidential", "asap", "immediately", "wire"},
			Action:   "Verify the request directly with the executive through a known phone number.",
		},
		{
			ID:          "supplier_impersonation",
			Name:        "Supplier Impersonation",
			Description: "Fraudster creates a similar-looking company to receive payments meant for a legitimate supplier.",
			Category:    "impersonation",
			Severity:    "high",
			TriggerFactors: []domain.FactorCode{
				domain.FactorNewPayee,
			},
			Keywords: []string{"supplier", "vendor", "payment due"},
			Action:   "Verify the supplier's details match your records before payment.",
		},
		{
			ID:          "advance_fee",
			Name:        "Advance Fee Fraud",
			Description: "Victim is asked to pay upfront fees to receive a larger sum or service.",
			Category:    "advance_fee",
			Severity:    "medium",
			TriggerFactors: []domain.FactorCode{
				domain.FactorNewPayee,
				domain.FactorSuspiciousReference,
			},
			Keywords: []string{"fee", "deposit", "processing", "release", "funds"},
			Action:   "Be suspicious of requests for upfront fees. Verify the legitimacy of the opportunity.",
		},
		{
			ID:          "unusual_hours",
			Name:        "After-Hours Transaction",
			Description: "Transaction initiated outside normal business hours may indicate unauthorized access.",
			Category:    "account_compromise",
			Severity:    "medium",
			TriggerFactors: []domain.FactorCode{
				domain.FactorUnusualTiming,
			},
			Action: "Confirm you authorized this transaction. Check for unauthorized account access.",
		},
		{
			ID:          "amount_anomaly",
			Name:        "Significant Amount Deviation",
			Description: "Transaction amount is significantly higher than your typical spending pattern.",
			Category:    "anomaly",
			Severity:    "medium",
			TriggerFactors: []domain.FactorCode{
				domain.FactorAmountSpike,
			},
			Action: "Verify this is an expected payment and the amount is correct.",
		},
	}
}
