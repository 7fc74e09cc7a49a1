// Package worker provides async post-scoring processing.
//
// The worker consumes scored-transaction events from the EventBus, warms the
// explanation cache so transaction detail reads never regenerate, appends the
// scoring event to the audit trail, and raises alerts for high-risk
// transactions.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/metrics"
)

// ExplanationTTL is how long warmed explanations stay cached. Explanations
// are deterministic over immutable inputs, so the TTL only bounds memory.
const ExplanationTTL = 24 * time.Hour

// Worker processes scored transactions asynchronously from the EventBus.
type Worker struct {
	bus       domain.EventBus
	repo      domain.Repository
	cache     domain.Cache
	generator domain.Generator

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process.
	TenantIDs []string
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, cache domain.Cache, generator domain.Generator) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:       bus,
		repo:      repo,
		cache:     cache,
		generator: generator,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing scored events for the given tenants.
func (w *Worker) Start(cfg Config) error {
	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startTenantWorker subscribes one tenant to the scored-transaction topic.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicTransactionScored, func(ctx context.Context, msg *domain.Message) error {
		return w.processScored(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicTransactionScored,
	)

	return nil
}

// ScoredMessage is the payload published when a transaction is scored.
type ScoredMessage struct {
	TxID      string  `json:"txId"`
	TenantID  string  `json:"tenantId"`
	RiskScore float64 `json:"riskScore"`
	RiskLevel string  `json:"riskLevel"`
}

// AlertMessage is the payload published for high-risk transactions.
type AlertMessage struct {
	TxID      string  `json:"txId"`
	TenantID  string  `json:"tenantId"`
	RiskScore float64 `json:"riskScore"`
	Amount    float64 `json:"amount"`
	Payee     string  `json:"payee"`
	Summary   string  `json:"summary"`
}

// processScored handles one scored-transaction event.
func (w *Worker) processScored(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	var scored ScoredMessage
	if err := json.Unmarshal(msg.Payload, &scored); err != nil {
		slog.Error("failed to parse scored message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message tenant if provided
	if scored.TenantID != "" {
		tenantID = scored.TenantID
	}

	tx, err := w.repo.GetTransaction(ctx, tenantID, scored.TxID)
	if err != nil {
		slog.Error("failed to load scored transaction",
			"tx_id", scored.TxID,
			"tenant_id", tenantID,
			"error", err,
		)
		return err
	}

	// Warm the explanation cache so the first detail read is a hit.
	exp := w.generator.Generate(tx, tx.RiskScore, tx.Factors)
	if err := w.cache.SetExplanation(ctx, tenantID, tx.ID, exp, ExplanationTTL); err != nil {
		slog.Warn("failed to warm explanation cache",
			"tx_id", tx.ID,
			"error", err,
		)
	}

	// Record the scoring in the audit trail.
	entry := &domain.AuditEntry{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		TxID:      tx.ID,
		Action:    domain.AuditActionScored,
		Details:   string(tx.RiskLevel),
		CreatedAt: time.Now().UTC(),
	}
	if err := w.repo.AppendAudit(ctx, tenantID, entry); err != nil {
		slog.Error("failed to append audit entry",
			"tx_id", tx.ID,
			"error", err,
		)
	}

	// High-risk transactions raise an alert.
	if tx.RiskLevel == domain.RiskHigh {
		alert := AlertMessage{
			TxID:      tx.ID,
			TenantID:  tenantID,
			RiskScore: tx.RiskScore,
			Amount:    tx.Amount,
			Payee:     tx.Payee,
			Summary:   exp.Summary,
		}
		payload, _ := json.Marshal(alert)
		if err := w.bus.Publish(ctx, tenantID, domain.TopicAlert, payload); err != nil {
			slog.Error("failed to publish alert",
				"tx_id", tx.ID,
				"error", err,
			)
		} else {
			metrics.AlertsPublishedTotal.Inc()
		}
	}

	slog.Info("scored transaction processed",
		"tx_id", tx.ID,
		"tenant_id", tenantID,
		"risk_level", tx.RiskLevel,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
