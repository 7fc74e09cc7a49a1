package patterns

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

func TestMatchEmptyFactors(t *testing.T) {
	p := NewMemoryProvider()

	matches, err := p.FindMatchingPatterns(context.Background(), nil, domain.PatternContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches for empty factors, got %d", len(matches))
	}
}

func TestMatchSingleFactor(t *testing.T) {
	p := NewMemoryProvider()

	factors := []domain.FactorCode{domain.FactorUnusualTiming}
	matches, err := p.FindMatchingPatterns(context.Background(), factors, domain.PatternContext{Reference: "Invoice 104"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// UNUSUAL_TIMING alone hits unusual_hours (1/1) and ceo_fraud (1/2).
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(matches), matches)
	}
	if matches[0].PatternID != "unusual_hours" || matches[0].MatchScore != 1.0 {
		t.Errorf("expected unusual_hours at 1.0 first, got %s at %v", matches[0].PatternID, matches[0].MatchScore)
	}
	if matches[1].PatternID != "ceo_fraud" || matches[1].MatchScore != 0.5 {
		t.Errorf("expected ceo_fraud at 0.5 second, got %s at %v", matches[1].PatternID, matches[1].MatchScore)
	}
}

func TestMatchKeywordBoost(t *testing.T) {
	p := NewMemoryProvider()

	factors := []domain.FactorCode{
		domain.FactorSuspiciousReference,
		domain.FactorUnusualTiming,
	}

	// "URGENT wire" hits both ceo_fraud trigger factors plus two keywords.
	matches, err := p.FindMatchingPatterns(context.Background(), factors, domain.PatternContext{Reference: "URGENT wire"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ceo *domain.PatternMatch
	for i := range matches {
		if matches[i].PatternID == "ceo_fraud" {
			ceo = &matches[i]
		}
	}
	if ceo == nil {
		t.Fatalf("ceo_fraud not matched: %v", matches)
	}
	// Full overlap already scores 1.0; keyword boosts clamp there.
	if ceo.MatchScore != 1.0 {
		t.Errorf("expected clamped score 1.0, got %v", ceo.MatchScore)
	}
}

func TestMatchPartialBoost(t *testing.T) {
	p := NewMemoryProvider()

	// UNUSUAL_TIMING only: ceo_fraud base 0.5, one keyword hit = 0.6.
	factors := []domain.FactorCode{domain.FactorUnusualTiming}
	matches, err := p.FindMatchingPatterns(context.Background(), factors, domain.PatternContext{Reference: "wire transfer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range matches {
		if m.PatternID == "ceo_fraud" {
			if m.MatchScore != 0.6 {
				t.Errorf("expected 0.6 with keyword boost, got %v", m.MatchScore)
			}
			return
		}
	}
	t.Fatalf("ceo_fraud not matched: %v", matches)
}

func TestMatchSortedDescending(t *testing.T) {
	p := NewMemoryProvider()

	factors := []domain.FactorCode{
		domain.FactorNewPayee,
		domain.FactorUnusualTiming,
		domain.FactorAmountSpike,
		domain.FactorSuspiciousReference,
	}
	matches, err := p.FindMatchingPatterns(context.Background(), factors, domain.PatternContext{Reference: "URGENT invoice payment"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// All four factors fired, so every catalog pattern matches.
	if len(matches) != len(DefaultCatalog()) {
		t.Fatalf("expected all %d patterns to match, got %d", len(DefaultCatalog()), len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].MatchScore > matches[i-1].MatchScore {
			t.Errorf("matches not sorted: %v before %v", matches[i-1].MatchScore, matches[i].MatchScore)
		}
	}
}

func TestMatchTieStability(t *testing.T) {
	p := NewMemoryProvider()

	// NEW_PAYEE with a plain reference: supplier_impersonation scores 1.0;
	// invoice_redirect and advance_fee tie at 0.5 and must keep catalog order.
	factors := []domain.FactorCode{domain.FactorNewPayee}
	matches, err := p.FindMatchingPatterns(context.Background(), factors, domain.PatternContext{Reference: "Rent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(matches), matches)
	}
	want := []string{"supplier_impersonation", "invoice_redirect", "advance_fee"}
	for i, id := range want {
		if matches[i].PatternID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, matches[i].PatternID)
		}
	}
}

func TestMemoryHealthCheck(t *testing.T) {
	p := NewMemoryProvider()
	if !p.HealthCheck(context.Background()) {
		t.Error("built-in catalog should always be healthy")
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	catalog := []domain.Pattern{
		{
			ID:             "test_pattern",
			Name:           "Test Pattern",
			Description:    "A pattern for testing.",
			Category:       "test",
			Severity:       "low",
			TriggerFactors: []domain.FactorCode{domain.FactorNewPayee},
			Keywords:       []string{"widget"},
			Action:         "Review the transaction carefully.",
		},
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(path)
	if !p.HealthCheck(context.Background()) {
		t.Fatal("file provider should be healthy with a valid catalog")
	}

	matches, err := p.FindMatchingPatterns(context.Background(),
		[]domain.FactorCode{domain.FactorNewPayee},
		domain.PatternContext{Reference: "widget order"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].PatternID != "test_pattern" {
		t.Fatalf("expected test_pattern match, got %v", matches)
	}
	// Base 1.0 clamps despite the keyword hit.
	if matches[0].MatchScore != 1.0 {
		t.Errorf("expected score 1.0, got %v", matches[0].MatchScore)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "absent.json"))

	if p.HealthCheck(context.Background()) {
		t.Error("missing catalog should report unhealthy")
	}

	matches, err := p.FindMatchingPatterns(context.Background(),
		[]domain.FactorCode{domain.FactorNewPayee}, domain.PatternContext{})
	if err != nil {
		t.Fatalf("matching must not error on a missing catalog: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected empty matches, got %v", matches)
	}
}

func TestNewFactory(t *testing.T) {
	if _, err := New(domain.PatternConfig{Provider: "memory"}); err != nil {
		t.Errorf("memory provider: %v", err)
	}
	if _, err := New(domain.PatternConfig{Provider: "file", CatalogPath: "x.json"}); err != nil {
		t.Errorf("file provider: %v", err)
	}
	if _, err := New(domain.PatternConfig{Provider: "file"}); err == nil {
		t.Error("file provider without a path should fail")
	}
	if _, err := New(domain.PatternConfig{Provider: "semantic"}); err == nil {
		t.Error("unknown provider should fail")
	}
}
