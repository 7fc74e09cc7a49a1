package repository

// Schema definitions for FraudShield.
// Compatible with both SQLite and PostgreSQL.

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    amount REAL NOT NULL,
    payee TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    reference TEXT NOT NULL,
    payee_is_new INTEGER NOT NULL DEFAULT 0,
    risk_score REAL NOT NULL,
    risk_level TEXT NOT NULL,
    factors TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_tenant ON transactions(tenant_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_level ON transactions(tenant_id, risk_level);
CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(tenant_id, status);
`

const schemaAuditLog = `
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    tx_id TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_tenant ON audit_log(tenant_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_tx ON audit_log(tenant_id, tx_id);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaTransactions,
		schemaAuditLog,
	}
}
