// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-finance/fraudshield/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveTransaction stores a scored transaction with tenant isolation.
func (r *SQLRepository) SaveTransaction(ctx context.Context, tenantID string, tx *domain.Transaction) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	factors, _ := json.Marshal(tx.Factors)

	payeeIsNew := 0
	if tx.PayeeIsNew {
		payeeIsNew = 1
	}

	query := `
		INSERT INTO transactions (
			id, tenant_id, amount, payee, timestamp, reference,
			payee_is_new, risk_score, risk_level, factors, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		tx.ID, tenantID, tx.Amount, tx.Payee,
		tx.Timestamp, tx.Reference, payeeIsNew,
		tx.RiskScore, string(tx.RiskLevel), string(factors), string(tx.Status),
		tx.CreatedAt, tx.UpdatedAt,
	)
	return err
}

// GetTransaction retrieves a transaction by ID with tenant isolation.
func (r *SQLRepository) GetTransaction(ctx context.Context, tenantID string, txID string) (*domain.Transaction, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, amount, payee, timestamp, reference,
			   payee_is_new, risk_score, risk_level, factors, status,
			   created_at, updated_at
		FROM transactions
		WHERE tenant_id = ? AND id = ?
	`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, r.rebind(query), tenantID, txID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions retrieves a page of transactions sorted newest first,
// plus the total count for the tenant.
func (r *SQLRepository) ListTransactions(ctx context.Context, tenantID string, offset, limit int) ([]*domain.Transaction, int, error) {
	if tenantID == "" {
		return nil, 0, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("%w: offset must be >= 0 and limit > 0", ErrInvalidInput)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions WHERE tenant_id = ?`
	if err := r.db.QueryRowContext(ctx, r.rebind(countQuery), tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, tenant_id, amount, payee, timestamp, reference,
			   payee_is_new, risk_score, risk_level, factors, status,
			   created_at, updated_at
		FROM transactions
		WHERE tenant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, total, rows.Err()
}

// UpdateStatus sets the review status of a transaction with tenant isolation.
func (r *SQLRepository) UpdateStatus(ctx context.Context, tenantID string, txID string, status domain.Status) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	query := `
		UPDATE transactions
		SET status = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), string(status), time.Now().UTC(), tenantID, txID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendAudit stores an audit trail entry with tenant isolation.
func (r *SQLRepository) AppendAudit(ctx context.Context, tenantID string, entry *domain.AuditEntry) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO audit_log (id, tenant_id, tx_id, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		entry.ID, tenantID, entry.TxID, entry.Action, entry.Details, entry.CreatedAt,
	)
	return err
}

// GetAuditTrail retrieves a transaction's audit entries, oldest first.
func (r *SQLRepository) GetAuditTrail(ctx context.Context, tenantID string, txID string) ([]*domain.AuditEntry, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, tx_id, action, details, created_at
		FROM audit_log
		WHERE tenant_id = ? AND tx_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, txID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var details sql.NullString

		if err := rows.Scan(&e.ID, &e.TenantID, &e.TxID, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Details = details.String
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var payeeIsNew int
	var riskLevel, factors, status string

	err := row.Scan(
		&tx.ID, &tx.TenantID, &tx.Amount, &tx.Payee,
		&tx.Timestamp, &tx.Reference, &payeeIsNew,
		&tx.RiskScore, &riskLevel, &factors, &status,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.PayeeIsNew = payeeIsNew == 1
	tx.RiskLevel = domain.RiskLevel(riskLevel)
	tx.Status = domain.Status(status)
	if factors != "" {
		json.Unmarshal([]byte(factors), &tx.Factors)
	}

	return &tx, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
