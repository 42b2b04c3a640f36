package relationaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// dialect holds the statements that differ between drivers.
type dialect struct {
	schema      []string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				seq        INTEGER PRIMARY KEY AUTOINCREMENT,
				hash       TEXT NOT NULL UNIQUE,
				tx_type    TEXT NOT NULL,
				account    TEXT NOT NULL,
				result     TEXT NOT NULL,
				raw_txn    BLOB NOT NULL,
				meta       BLOB NOT NULL,
				applied_at INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS account_transactions (
				account TEXT NOT NULL,
				seq     INTEGER NOT NULL,
				PRIMARY KEY (account, seq)
			)`,
		},
		placeholder: func(int) string { return "?" },
	},
	DriverPostgres: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS transactions (
				seq        BIGSERIAL PRIMARY KEY,
				hash       TEXT NOT NULL UNIQUE,
				tx_type    TEXT NOT NULL,
				account    TEXT NOT NULL,
				result     TEXT NOT NULL,
				raw_txn    BYTEA NOT NULL,
				meta       BYTEA NOT NULL,
				applied_at BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS account_transactions (
				account TEXT NOT NULL,
				seq     BIGINT NOT NULL,
				PRIMARY KEY (account, seq)
			)`,
		},
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
}

// SQLStore implements HistoryStore over database/sql.
type SQLStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	config  *Config
	dialect dialect
}

// Open validates config, connects and creates the schema.
func Open(ctx context.Context, config *Config) (*SQLStore, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigurationError("open", "invalid configuration", err)
	}
	d := dialects[config.Driver]

	db, err := sql.Open(config.Driver, config.ConnectionString())
	if err != nil {
		return nil, NewConnectionError("open", "failed to open database connection", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, config.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewConnectionError("open", "failed to ping database", err)
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, NewSchemaError("open", "failed to initialize schema", err)
		}
	}

	return &SQLStore{db: db, config: config, dialect: d}, nil
}

// rebind rewrites ? placeholders for the store's driver.
func (s *SQLStore) rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrDatabaseClosed
	}
	return s.db, nil
}

func (s *SQLStore) SaveTransaction(ctx context.Context, entry *TxEntry, accounts []types.Identity) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return NewQueryError("save_transaction", "failed to begin", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO transactions (hash, tx_type, account, result, raw_txn, meta, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (hash) DO NOTHING
		 RETURNING seq`),
		entry.Hash.String(), entry.TransactionType, entry.Account.String(),
		entry.Result, entry.RawTxn, entry.Meta, entry.AppliedAt.Unix(),
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDuplicateEntry
	}
	if err != nil {
		return NewQueryError("save_transaction", "failed to insert transaction", err)
	}

	seen := make(map[types.Identity]struct{}, len(accounts))
	for _, account := range accounts {
		if account.IsZero() {
			continue
		}
		if _, dup := seen[account]; dup {
			continue
		}
		seen[account] = struct{}{}
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO account_transactions (account, seq) VALUES (?, ?)`),
			account.String(), seq,
		); err != nil {
			return NewQueryError("save_transaction", "failed to index account", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewQueryError("save_transaction", "failed to commit", err)
	}
	entry.Seq = uint64(seq)
	return nil
}

const selectColumns = `t.seq, t.hash, t.tx_type, t.account, t.result, t.raw_txn, t.meta, t.applied_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*TxEntry, error) {
	var (
		entry          TxEntry
		seq, appliedAt int64
		hash, account  string
	)
	if err := row.Scan(&seq, &hash, &entry.TransactionType, &account, &entry.Result,
		&entry.RawTxn, &entry.Meta, &appliedAt); err != nil {
		return nil, err
	}

	h, err := types.HashFromHex(hash)
	if err != nil {
		return nil, fmt.Errorf("stored hash %q: %w", hash, err)
	}
	id, err := types.IdentityFromHex(account)
	if err != nil {
		return nil, fmt.Errorf("stored account %q: %w", account, err)
	}
	entry.Seq = uint64(seq)
	entry.Hash = h
	entry.Account = id
	entry.AppliedAt = time.Unix(appliedAt, 0).UTC()
	return &entry, nil
}

func (s *SQLStore) GetTransaction(ctx context.Context, hash types.Hash256) (*TxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, s.rebind(
		`SELECT `+selectColumns+` FROM transactions t WHERE t.hash = ?`), hash.String())
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, NewQueryError("get_transaction", "failed to read transaction", err)
	}
	return entry, nil
}

func (s *SQLStore) GetAccountTransactions(ctx context.Context, opts AccountTxOptions) (*AccountTxResult, error) {
	if opts.Limit < 0 || opts.Limit > MaxAccountTxLimit {
		return nil, ErrInvalidLimit
	}
	if opts.Limit == 0 {
		opts.Limit = 200
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	order, cmp := "DESC", "<"
	if opts.Forward {
		order, cmp = "ASC", ">"
	}
	query := `SELECT ` + selectColumns + `
		FROM account_transactions a JOIN transactions t ON t.seq = a.seq
		WHERE a.account = ?`
	args := []any{opts.Account.String()}
	if opts.Marker != 0 {
		query += ` AND a.seq ` + cmp + ` ?`
		args = append(args, int64(opts.Marker))
	}
	// one extra row tells whether another page exists
	query += ` ORDER BY a.seq ` + order + ` LIMIT ?`
	args = append(args, opts.Limit+1)

	rows, err := db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, NewQueryError("get_account_transactions", "query failed", err)
	}
	defer rows.Close()

	result := &AccountTxResult{Transactions: []TxEntry{}, Limit: opts.Limit}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, NewQueryError("get_account_transactions", "scan failed", err)
		}
		result.Transactions = append(result.Transactions, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("get_account_transactions", "iteration failed", err)
	}

	if len(result.Transactions) > opts.Limit {
		result.Transactions = result.Transactions[:opts.Limit]
		result.Marker = result.Transactions[opts.Limit-1].Seq
	}
	return result, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, NewQueryError("count", "failed to count transactions", err)
	}
	return n, nil
}

func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
