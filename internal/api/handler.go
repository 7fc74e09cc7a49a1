package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opensource-finance/fraudshield/internal/domain"
	"github.com/opensource-finance/fraudshield/internal/metrics"
	"github.com/opensource-finance/fraudshield/internal/repository"
	"github.com/opensource-finance/fraudshield/internal/risk"
)

// explanationTTL is how long handler-generated explanations stay cached.
const explanationTTL = 24 * time.Hour

// Handler holds dependencies for API handlers.
type Handler struct {
	repo      domain.Repository
	cache     domain.Cache
	bus       domain.EventBus
	scorer    *risk.Scorer
	generator domain.Generator
	patterns  domain.PatternProvider
	version   string
	tier      domain.Tier
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, scorer *risk.Scorer, generator domain.Generator, patterns domain.PatternProvider, version string, tier domain.Tier) *Handler {
	return &Handler{
		repo:      repo,
		cache:     cache,
		bus:       bus,
		scorer:    scorer,
		generator: generator,
		patterns:  patterns,
		version:   version,
		tier:      tier,
	}
}

// AssessmentResponse is the response for POST /transactions.
type AssessmentResponse struct {
	Transaction *domain.Transaction `json:"transaction"`
	Explanation *domain.Explanation `json:"explanation"`
}

// TransactionPage is the response for GET /transactions.
type TransactionPage struct {
	Items      []*domain.Transaction `json:"items"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
}

// ScoredEvent is the payload published to the scored-transaction topic.
type ScoredEvent struct {
	TxID      string  `json:"txId"`
	TenantID  string  `json:"tenantId"`
	RiskScore float64 `json:"riskScore"`
	RiskLevel string  `json:"riskLevel"`
}

// CreateTransaction handles POST /transactions: validate, score, classify,
// explain, persist, audit, and publish the scored event.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	ts, err := req.Validate()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	tx := req.ToTransaction(ts)
	tx.ID = uuid.New().String()
	tx.TenantID = tenantID

	// Score at submission time; the assessment is immutable afterwards.
	score, factors := h.scorer.Score(tx)
	tx.RiskScore = score
	tx.RiskLevel = h.scorer.Classify(score)
	tx.Factors = factors

	if err := h.repo.SaveTransaction(ctx, tenantID, tx); err != nil {
		slog.Error("failed to save transaction", "tx_id", tx.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save transaction",
		})
		return
	}

	metrics.TransactionsScoredTotal.WithLabelValues(string(tx.RiskLevel)).Inc()

	// Audit the submission.
	entry := &domain.AuditEntry{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		TxID:      tx.ID,
		Action:    domain.AuditActionCreated,
		Details:   "submitted via api",
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.AppendAudit(ctx, tenantID, entry); err != nil {
		slog.Error("failed to append audit entry", "tx_id", tx.ID, "error", err)
	}

	// Generate and cache the explanation synchronously so the response and
	// later detail reads agree byte for byte.
	exp := h.generator.Generate(tx, score, factors)
	if h.cache != nil {
		if err := h.cache.SetExplanation(ctx, tenantID, tx.ID, exp, explanationTTL); err != nil {
			slog.Warn("failed to cache explanation", "tx_id", tx.ID, "error", err)
		}
	}

	// Notify downstream consumers.
	if h.bus != nil {
		event := ScoredEvent{
			TxID:      tx.ID,
			TenantID:  tenantID,
			RiskScore: tx.RiskScore,
			RiskLevel: string(tx.RiskLevel),
		}
		payload, _ := json.Marshal(event)
		if err := h.bus.Publish(ctx, tenantID, domain.TopicTransactionScored, payload); err != nil {
			slog.Error("failed to publish scored event", "tx_id", tx.ID, "error", err)
		}
	}

	slog.Info("transaction scored",
		"tx_id", tx.ID,
		"tenant_id", tenantID,
		"risk_level", tx.RiskLevel,
		"risk_score", tx.RiskScore,
		"factor_count", len(factors),
	)

	writeJSON(w, http.StatusCreated, AssessmentResponse{
		Transaction: tx,
		Explanation: exp,
	})
}

// ListTransactions handles GET /transactions with page/page_size pagination,
// newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	page := parseQueryInt(r, "page", 1)
	pageSize := parseQueryInt(r, "page_size", 20)

	if page < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "page must be >= 1",
		})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "page_size must be between 1 and 100",
		})
		return
	}

	offset := (page - 1) * pageSize
	txs, total, err := h.repo.ListTransactions(ctx, tenantID, offset, pageSize)
	if err != nil {
		slog.Error("failed to list transactions", "tenant_id", tenantID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list transactions",
		})
		return
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}

	writeJSON(w, http.StatusOK, TransactionPage{
		Items:      txs,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}

// GetTransaction handles GET /transactions/{id}, returning the stored record
// with its explanation. The explanation is served from cache when warm and
// regenerated (then re-cached) otherwise; both paths produce identical text.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	txID := chi.URLParam(r, "id")

	tx, err := h.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "transaction not found",
			})
			return
		}
		slog.Error("failed to get transaction", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get transaction",
		})
		return
	}

	var exp *domain.Explanation
	if h.cache != nil {
		exp, err = h.cache.GetExplanation(ctx, tenantID, txID)
		if err != nil {
			slog.Warn("explanation cache read failed", "tx_id", txID, "error", err)
		}
	}
	if exp != nil {
		metrics.ExplanationCacheHits.WithLabelValues("hit").Inc()
	} else {
		metrics.ExplanationCacheHits.WithLabelValues("miss").Inc()
		exp = h.generator.Generate(tx, tx.RiskScore, tx.Factors)
		if h.cache != nil {
			if err := h.cache.SetExplanation(ctx, tenantID, txID, exp, explanationTTL); err != nil {
				slog.Warn("failed to cache explanation", "tx_id", txID, "error", err)
			}
		}
	}

	writeJSON(w, http.StatusOK, AssessmentResponse{
		Transaction: tx,
		Explanation: exp,
	})
}

// GetPatternMatches handles GET /transactions/{id}/patterns.
func (h *Handler) GetPatternMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	txID := chi.URLParam(r, "id")

	tx, err := h.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "transaction not found",
			})
			return
		}
		slog.Error("failed to get transaction", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get transaction",
		})
		return
	}

	txCtx := domain.PatternContext{
		Amount:    tx.Amount,
		Payee:     tx.Payee,
		Reference: tx.Reference,
		Timestamp: tx.Timestamp.Format(time.RFC3339),
	}

	matches, err := h.patterns.FindMatchingPatterns(ctx, tx.Factors, txCtx)
	if err != nil {
		slog.Error("pattern matching failed", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "pattern matching failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactionId": txID,
		"matches":       matches,
		"count":         len(matches),
	})
}

// StatusUpdateRequest is the request body for PUT /transactions/{id}/status.
type StatusUpdateRequest struct {
	Status domain.Status `json:"status"`
}

// UpdateStatus handles PUT /transactions/{id}/status.
// Only the approved and rejected decisions are accepted; a record cannot be
// moved back to pending.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	txID := chi.URLParam(r, "id")

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Status != domain.StatusApproved && req.Status != domain.StatusRejected {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "status must be approved or rejected",
		})
		return
	}

	if err := h.repo.UpdateStatus(ctx, tenantID, txID, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "transaction not found",
			})
			return
		}
		slog.Error("failed to update status", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to update status",
		})
		return
	}

	metrics.StatusUpdatesTotal.WithLabelValues(string(req.Status)).Inc()

	action := domain.AuditActionApproved
	if req.Status == domain.StatusRejected {
		action = domain.AuditActionRejected
	}
	entry := &domain.AuditEntry{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		TxID:      txID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.repo.AppendAudit(ctx, tenantID, entry); err != nil {
		slog.Error("failed to append audit entry", "tx_id", txID, "error", err)
	}

	slog.Info("transaction status updated",
		"tx_id", txID,
		"tenant_id", tenantID,
		"status", req.Status,
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     txID,
		"status": string(req.Status),
	})
}

// GetAuditTrail handles GET /transactions/{id}/audit.
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	txID := chi.URLParam(r, "id")

	// Confirm the transaction exists for this tenant before exposing audit data.
	if _, err := h.repo.GetTransaction(ctx, tenantID, txID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "transaction not found",
			})
			return
		}
		slog.Error("failed to get transaction", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get transaction",
		})
		return
	}

	trail, err := h.repo.GetAuditTrail(ctx, tenantID, txID)
	if err != nil {
		slog.Error("failed to get audit trail", "tx_id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get audit trail",
		})
		return
	}

	if trail == nil {
		trail = []*domain.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactionId": txID,
		"entries":       trail,
		"count":         len(trail),
	})
}

// Root returns service identification.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "fraudshield",
		"version": h.version,
		"tier":    string(h.tier),
	})
}

// Health returns server health status, including collaborator checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}

	if h.repo != nil {
		checks["repository"] = "ok"
		if err := h.repo.Ping(r.Context()); err != nil {
			checks["repository"] = "unavailable"
			status = "degraded"
		}
	}
	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(r.Context()); err != nil {
			checks["cache"] = "unavailable"
			status = "degraded"
		}
	}
	if h.bus != nil {
		checks["eventBus"] = "ok"
		if err := h.bus.Ping(r.Context()); err != nil {
			checks["eventBus"] = "unavailable"
			status = "degraded"
		}
	}
	if h.patterns != nil {
		checks["patterns"] = "ok"
		if !h.patterns.HealthCheck(r.Context()) {
			checks["patterns"] = "unavailable"
			status = "degraded"
		}
	}
	if h.generator != nil {
		checks["generator"] = "ok"
		if !h.generator.HealthCheck(r.Context()) {
			checks["generator"] = "unavailable"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": h.version,
		"checks":  checks,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func parseQueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
