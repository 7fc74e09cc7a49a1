package explain

import "github.com/opensource-finance/fraudshield/internal/domain"

// Factor-specific description templates. Placeholders are substituted from
// the transaction by renderFactor.
const (
	descNewPayee            = "First-ever transfer to this payee - no transaction history"
	descUnusualTiming       = "Initiated at %02d:%02d - outside normal hours (9am-6pm)"
	descAmountSpike         = "Amount (£%d) is %.1fx your average (£%d)"
	descSuspiciousReference = "Reference contains urgency markers often linked to fraud"

	// descUnknown backs any factor code the renderer does not recognize.
	descUnknown = "Additional risk indicator detected"
)

// recommendedActions maps each risk level to its fixed action text.
var recommendedActions = map[domain.RiskLevel]string{
	domain.RiskHigh:   "Verify payee identity before releasing funds.",
	domain.RiskMedium: "Review manually - indicators present but not conclusive.",
	domain.RiskLow:    "Transaction appears normal. No action required.",
}
