// Package postgres persists transactions, clients, and audit records in
// PostgreSQL. Stores are pure I/O; all rule logic lives in the engine.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bankguard/internal/domain"
	"bankguard/internal/storage"
)

// undefinedTable is the PostgreSQL error code raised when a statement
// references a table that does not exist.
const undefinedTable = pq.ErrorCode("42P01")

// TransactionStore is a PostgreSQL-backed storage.TransactionStore.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Insert(ctx context.Context, tx domain.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, client_id, amount, currency, operation_type, destination_account, origin_ip, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.ClientID,
		tx.Amount,
		tx.Currency,
		string(tx.Operation),
		tx.DestinationAccount,
		tx.OriginIP,
		tx.CreatedAt,
		string(tx.Status),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *TransactionStore) FindByID(ctx context.Context, id uuid.UUID) (domain.Transaction, error) {
	query := `
		SELECT transaction_id, client_id, amount, currency, operation_type, destination_account, origin_ip, created_at, status
		FROM transactions
		WHERE transaction_id = $1
	`
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, storage.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return tx, nil
}

func (s *TransactionStore) FetchPending(ctx context.Context) ([]domain.Transaction, error) {
	query := `
		SELECT transaction_id, client_id, amount, currency, operation_type, destination_account, origin_ip, created_at, status
		FROM transactions
		WHERE status = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("fetch pending transactions: %w", err)
	}
	defer rows.Close()

	var pending []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		pending = append(pending, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return pending, nil
}

func (s *TransactionStore) CountByClientBetween(ctx context.Context, clientID uuid.UUID, from, to time.Time) (int, error) {
	// BETWEEN is inclusive on both bounds, which is exactly the velocity
	// window contract: the transaction counts toward its own window.
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE client_id = $1 AND created_at BETWEEN $2 AND $3
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, clientID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count client transactions: %w", err)
	}
	return count, nil
}

// SetStatus atomically claims a PENDING row and writes its terminal status.
// The WHERE guard plus the affected-row count is what guarantees at-most-one
// verdict even if a second worker instance or a restarted supervisor races us.
func (s *TransactionStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) (bool, error) {
	query := `
		UPDATE transactions
		SET status = $2
		WHERE transaction_id = $1
		  AND status = $3
	`
	result, err := s.db.ExecContext(ctx, query, id, string(status), string(domain.StatusPending))
	if err != nil {
		return false, fmt.Errorf("set transaction status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set transaction status rows affected: %w", err)
	}
	return rows > 0, nil
}

// ClientStore is a PostgreSQL-backed storage.ClientStore.
type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

func (s *ClientStore) Save(ctx context.Context, client domain.Client) error {
	query := `
		INSERT INTO clients (client_id, full_name, national_id, email, credit_score, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			national_id = EXCLUDED.national_id,
			email = EXCLUDED.email,
			credit_score = EXCLUDED.credit_score,
			country = EXCLUDED.country
	`
	_, err := s.db.ExecContext(ctx, query,
		client.ID,
		client.FullName,
		client.NationalID,
		client.Email,
		client.CreditScore,
		client.Country,
	)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

func (s *ClientStore) FindByID(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	query := `
		SELECT client_id, full_name, national_id, email, credit_score, country
		FROM clients
		WHERE client_id = $1
	`
	var client domain.Client
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.FullName,
		&client.NationalID,
		&client.Email,
		&client.CreditScore,
		&client.Country,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, storage.ErrNotFound
		}
		return domain.Client{}, fmt.Errorf("find client: %w", err)
	}
	return client, nil
}

// AuditStore is a PostgreSQL-backed storage.AuditStore. A missing audit table
// surfaces as storage.ErrAuditUnavailable rather than a raw driver error so
// the verdict path can degrade gracefully.
type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_records (audit_id, transaction_id, rule_code, risk_score, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TransactionID,
		string(record.RuleCode),
		record.RiskScore,
		string(record.Action),
		record.Detail,
		record.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
			return fmt.Errorf("append audit record: %w", storage.ErrAuditUnavailable)
		}
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

func (s *AuditStore) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]domain.AuditRecord, error) {
	query := `
		SELECT audit_id, transaction_id, rule_code, risk_score, action, detail, created_at
		FROM audit_records
		WHERE transaction_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var record domain.AuditRecord
		var ruleCode, action string
		if err := rows.Scan(
			&record.ID,
			&record.TransactionID,
			&ruleCode,
			&record.RiskScore,
			&action,
			&record.Detail,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		record.RuleCode = domain.RuleCode(ruleCode)
		record.Action = domain.AuditAction(action)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var tx domain.Transaction
	var operation, status string
	if err := row.Scan(
		&tx.ID,
		&tx.ClientID,
		&tx.Amount,
		&tx.Currency,
		&operation,
		&tx.DestinationAccount,
		&tx.OriginIP,
		&tx.CreatedAt,
		&status,
	); err != nil {
		return domain.Transaction{}, err
	}
	tx.Operation = domain.OperationType(operation)
	tx.Status = domain.TransactionStatus(status)
	return tx, nil
}
