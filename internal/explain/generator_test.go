package explain

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/risk"
)

func newTestGenerator() *TemplateGenerator {
	return NewTemplateGenerator(risk.NewScorer(domain.DefaultRiskConfig()))
}

func testTx(t *testing.T, amount float64, ts string, reference string, payeeIsNew bool) *domain.Transaction {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", ts, err)
	}
	return &domain.Transaction{
		Amount:     amount,
		Payee:      "ABC Holdings Ltd",
		Timestamp:  parsed,
		Reference:  reference,
		PayeeIsNew: payeeIsNew,
	}
}

func TestGenerateNoFactors(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 100, "2026-01-05T12:00:00Z", "Rent", false)

	exp := g.Generate(tx, 0.0, nil)

	if exp.RiskLevel != domain.RiskLow {
		t.Errorf("expected low risk, got %s", exp.RiskLevel)
	}
	if exp.Confidence != 50 {
		t.Errorf("expected confidence 50 with no factors, got %d", exp.Confidence)
	}
	if exp.Summary != "No fraud indicators detected for this transaction." {
		t.Errorf("unexpected summary: %q", exp.Summary)
	}
	if len(exp.RiskFactors) != 0 {
		t.Errorf("expected no factor lines, got %v", exp.RiskFactors)
	}
	if exp.RecommendedAction != "Transaction appears normal. No action required." {
		t.Errorf("unexpected action: %q", exp.RecommendedAction)
	}
}

func TestGenerateSingleFactor(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 100, "2026-01-05T12:00:00Z", "Rent", true)

	exp := g.Generate(tx, 0.25, []domain.FactorCode{domain.FactorNewPayee})

	if exp.Summary != "This transaction triggered 1 fraud indicator." {
		t.Errorf("unexpected summary: %q", exp.Summary)
	}
	// 50 + 12*1 + round(0.25*20) = 67
	if exp.Confidence != 67 {
		t.Errorf("expected confidence 67, got %d", exp.Confidence)
	}
	want := "1. New Payee - First-ever transfer to this payee - no transaction history"
	if len(exp.RiskFactors) != 1 || exp.RiskFactors[0] != want {
		t.Errorf("expected %q, got %v", want, exp.RiskFactors)
	}
}

func TestGenerateFactorFormatting(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 4200, "2026-01-05T03:47:00Z", "Invoice 2847", true)

	factors := []domain.FactorCode{
		domain.FactorNewPayee,
		domain.FactorUnusualTiming,
		domain.FactorAmountSpike,
	}
	exp := g.Generate(tx, 0.80, factors)

	if exp.RiskLevel != domain.RiskHigh {
		t.Errorf("expected high risk for 0.80, got %s", exp.RiskLevel)
	}
	if len(exp.RiskFactors) != 3 {
		t.Fatalf("expected 3 factor lines, got %d", len(exp.RiskFactors))
	}

	if got := exp.RiskFactors[1]; got != "2. Unusual Timing - Initiated at 03:47 - outside normal hours (9am-6pm)" {
		t.Errorf("unexpected timing line: %q", got)
	}
	// 4200 / 520 = 8.0769... rounded to one decimal
	if got := exp.RiskFactors[2]; got != "3. Amount Spike - Amount (£4200) is 8.1x your average (£520)" {
		t.Errorf("unexpected amount line: %q", got)
	}
	if exp.RecommendedAction != "Verify payee identity before releasing funds." {
		t.Errorf("unexpected action: %q", exp.RecommendedAction)
	}
}

func TestGenerateConfidenceBounds(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 5000, "2026-01-05T03:00:00Z", "URGENT wire", true)

	all := []domain.FactorCode{
		domain.FactorNewPayee,
		domain.FactorUnusualTiming,
		domain.FactorAmountSpike,
		domain.FactorSuspiciousReference,
	}
	exp := g.Generate(tx, 1.0, all)

	if exp.Confidence != 99 {
		t.Errorf("confidence must cap at 99, got %d", exp.Confidence)
	}
}

func TestGenerateConfidenceMonotonic(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 100, "2026-01-05T12:00:00Z", "Rent", false)

	prev := 0
	factors := []domain.FactorCode{}
	scores := []float64{0.0, 0.25, 0.50, 0.80}
	codes := []domain.FactorCode{
		domain.FactorNewPayee,
		domain.FactorUnusualTiming,
		domain.FactorAmountSpike,
	}

	for i, score := range scores {
		exp := g.Generate(tx, score, factors)
		if exp.Confidence < prev {
			t.Errorf("confidence decreased: %d after %d", exp.Confidence, prev)
		}
		if exp.Confidence < 50 || exp.Confidence > 99 {
			t.Errorf("confidence %d outside [50,99]", exp.Confidence)
		}
		prev = exp.Confidence
		if i < len(codes) {
			factors = append(factors, codes[i])
		}
	}
}

func TestGenerateUnknownFactor(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 100, "2026-01-05T12:00:00Z", "Rent", false)

	exp := g.Generate(tx, 0.25, []domain.FactorCode{"ODD_DEVICE_SIGNAL"})

	if len(exp.RiskFactors) != 1 {
		t.Fatalf("expected 1 factor line, got %v", exp.RiskFactors)
	}
	if !strings.HasPrefix(exp.RiskFactors[0], "1. Odd Device Signal - ") {
		t.Errorf("expected title-cased fallback, got %q", exp.RiskFactors[0])
	}
}

func TestGenerateIdempotent(t *testing.T) {
	g := newTestGenerator()
	tx := testTx(t, 4200, "2026-01-05T03:47:00Z", "Invoice 2847", true)
	factors := []domain.FactorCode{domain.FactorNewPayee, domain.FactorUnusualTiming}

	a := g.Generate(tx, 0.50, factors)
	b := g.Generate(tx, 0.50, factors)

	if a.Summary != b.Summary || a.Confidence != b.Confidence ||
		a.RiskLevel != b.RiskLevel || a.RecommendedAction != b.RecommendedAction {
		t.Error("repeated generation produced different output")
	}
	for i := range a.RiskFactors {
		if a.RiskFactors[i] != b.RiskFactors[i] {
			t.Errorf("factor line %d differs: %q vs %q", i, a.RiskFactors[i], b.RiskFactors[i])
		}
	}
}

func TestGenerateScenario(t *testing.T) {
	// Known payee equivalent scenario: two factors, medium risk.
	g := newTestGenerator()
	tx := testTx(t, 900, "2026-01-05T03:47:00Z", "Invoice 2847", true)

	factors := []domain.FactorCode{domain.FactorNewPayee, domain.FactorUnusualTiming}
	exp := g.Generate(tx, 0.50, factors)

	if exp.RiskLevel != domain.RiskMedium {
		t.Errorf("expected medium, got %s", exp.RiskLevel)
	}
	// min(99, 50 + 24 + 10) = 84
	if exp.Confidence != 84 {
		t.Errorf("expected confidence 84, got %d", exp.Confidence)
	}
	if exp.RecommendedAction != "Review manually - indicators present but not conclusive." {
		t.Errorf("unexpected action: %q", exp.RecommendedAction)
	}
}

func TestHealthCheck(t *testing.T) {
	g := newTestGenerator()
	if !g.HealthCheck(context.Background()) {
		t.Error("template generator should always be healthy")
	}
}
