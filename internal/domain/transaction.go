// Package domain defines the core interfaces and types for FraudShield.
package domain

import (
	"fmt"
	"time"
)

// Transaction represents a payment that has been submitted for fraud analysis.
// Once scored, the record is immutable apart from its review status.
type Transaction struct {
	// Core identifiers
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`

	// Payment details
	Amount    float64   `json:"amount"`
	Payee     string    `json:"payee"`
	Timestamp time.Time `json:"timestamp"`
	Reference string    `json:"reference"`

	// PayeeIsNew indicates the account has never paid this payee before.
	PayeeIsNew bool `json:"payeeIsNew"`

	// Assessment results, populated at submission time
	RiskScore float64      `json:"riskScore"`
	RiskLevel RiskLevel    `json:"riskLevel"`
	Factors   []FactorCode `json:"factors"`

	// Review workflow
	Status Status `json:"status"`

	// Server-generated timestamps
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Status is the review state of a scored transaction.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is a recognized review status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// TransactionRequest is the API request payload for submitting a transaction.
// Timestamp is ISO-8601 text; a trailing Z is treated as a UTC offset.
type TransactionRequest struct {
	Amount     float64 `json:"amount"`
	Payee      string  `json:"payee"`
	Timestamp  string  `json:"timestamp"`
	Reference  string  `json:"reference"`
	PayeeIsNew bool    `json:"payeeIsNew"`
}

// Validate checks required fields and parses the timestamp.
// A malformed timestamp is a caller error, never silently defaulted.
func (r *TransactionRequest) Validate() (time.Time, error) {
	if r.Amount <= 0 {
		return time.Time{}, fmt.Errorf("amount must be positive")
	}
	if r.Payee == "" {
		return time.Time{}, fmt.Errorf("payee is required")
	}
	if r.Reference == "" {
		return time.Time{}, fmt.Errorf("reference is required")
	}
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp must be ISO-8601: %w", err)
	}
	return ts, nil
}

// ToTransaction converts a validated request to a Transaction domain object.
// The caller assigns ID, tenant, and assessment fields.
func (r *TransactionRequest) ToTransaction(ts time.Time) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		Amount:     r.Amount,
		Payee:      r.Payee,
		Timestamp:  ts,
		Reference:  r.Reference,
		PayeeIsNew: r.PayeeIsNew,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AuditEntry is one event in a transaction's audit trail.
type AuditEntry struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	TxID      string    `json:"txId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// Audit trail action names.
const (
	AuditActionCreated  = "created"
	AuditActionScored   = "scored"
	AuditActionApproved = "approved"
	AuditActionRejected = "rejected"
)
