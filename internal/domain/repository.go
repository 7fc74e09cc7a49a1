package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
// Writes are last-write-wins per record; reads observe prior writes for the
// same transaction ID.
type Repository interface {
	// Transaction operations
	SaveTransaction(ctx context.Context, tenantID string, tx *Transaction) error
	GetTransaction(ctx context.Context, tenantID string, txID string) (*Transaction, error)

	// ListTransactions returns a page of transactions sorted by creation
	// time (newest first) along with the total count for the tenant.
	ListTransactions(ctx context.Context, tenantID string, offset, limit int) ([]*Transaction, int, error)

	// UpdateStatus sets the review status of a transaction.
	UpdateStatus(ctx context.Context, tenantID string, txID string, status Status) error

	// Audit trail operations
	AppendAudit(ctx context.Context, tenantID string, entry *AuditEntry) error
	GetAuditTrail(ctx context.Context, tenantID string, txID string) ([]*AuditEntry, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
