// Package patterns matches detected risk factors against a catalog of known
// fraud schemes.
//
// All providers share one matching algorithm over their catalog: the match
// score is the fraction of a pattern's trigger factors present in the
// transaction's factor list, boosted by keyword hits in the reference text.
// Providers differ only in where the catalog comes from.
package patterns

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

// New creates a pattern provider based on the configured catalog source.
func New(cfg domain.PatternConfig) (domain.PatternProvider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider(), nil
	case "file":
		if cfg.CatalogPath == "" {
			return nil, fmt.Errorf("file pattern provider requires a catalog path")
		}
		return NewFileProvider(cfg.CatalogPath), nil
	default:
		return nil, fmt.Errorf("unknown pattern provider: %s", cfg.Provider)
	}
}

// matchCatalog runs the shared matching algorithm over a catalog.
//
// A pattern matches when at least one of its trigger factors fired. The base
// score is overlap / len(triggerFactors); each keyword found in the
// lowercased reference adds 0.1, clamped at 1.0. Scores are rounded to two
// decimals and the result is sorted by score descending, with ties kept in
// catalog order.
func matchCatalog(catalog []domain.Pattern, factors []domain.FactorCode, txCtx domain.PatternContext) []domain.PatternMatch {
	if len(factors) == 0 {
		return []domain.PatternMatch{}
	}

	fired := make(map[domain.FactorCode]bool, len(factors))
	for _, f := range factors {
		fired[f] = true
	}
	reference := strings.ToLower(txCtx.Reference)

	matches := make([]domain.PatternMatch, 0, len(catalog))
	for _, p := range catalog {
		overlap := 0
		for _, trigger := range p.TriggerFactors {
			if fired[trigger] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		denom := len(p.TriggerFactors)
		if denom < 1 {
			denom = 1
		}
		score := float64(overlap) / float64(denom)

		for _, kw := range p.Keywords {
			if strings.Contains(reference, strings.ToLower(kw)) {
				score += 0.1
			}
		}
		if score > 1.0 {
			score = 1.0
		}

		matches = append(matches, domain.PatternMatch{
			PatternID:         p.ID,
			PatternName:       p.Name,
			Description:       p.Description,
			MatchScore:        math.Round(score*100) / 100,
			RecommendedAction: p.Action,
			Category:          p.Category,
			Severity:          p.Severity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}
