// Package storage is the persistence collaborator: CRUD over the five
// ledger entities on SQLite, no business logic. The engine only ever sees
// snapshots read from here; all mutation goes through explicit calls issued
// by the services after the engine approves an operation.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/ledger"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Snapshot assembles the full read-only view the ledger engine computes
// over. It is re-read on every UI interaction; data volumes make that
// acceptable and it removes any staleness window within one computation.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (ledger.Snapshot, error) {
	var s ledger.Snapshot
	var err error

	if s.Accounts, err = r.ListAccounts(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if s.Categories, err = r.ListCategories(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if s.Transactions, err = r.ListTransactions(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if s.Refunds, err = r.ListRefunds(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	if s.Budgets, err = r.ListCategoryBudgets(ctx); err != nil {
		return ledger.Snapshot{}, err
	}
	return s, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, currency, emoji FROM accounts ORDER BY name`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &a.Emoji); err != nil {
			return nil, storeErr("scan account", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, storeErr("list accounts", rows.Err())
}

func (r *SQLiteRepository) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, currency, emoji) VALUES (?, ?, ?, ?)`,
		a.ID, a.Name, a.Currency, a.Emoji)
	return storeErr("insert account", err)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, COALESCE(parent_id, ''), sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.ParentID, &c.SortOrder); err != nil {
			return nil, storeErr("scan category", err)
		}
		categories = append(categories, c)
	}
	return categories, storeErr("list categories", rows.Err())
}

func (r *SQLiteRepository) InsertCategory(ctx context.Context, c core.Category) error {
	parent := sql.NullString{String: c.ParentID, Valid: c.ParentID != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, parent_id, sort_order) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), parent, c.SortOrder)
	return storeErr("insert category", err)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, flow, account_id, category_id, amount, currency, date, note, tags, created_at
		 FROM transactions ORDER BY date, created_at`)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("scan transaction", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, storeErr("list transactions", rows.Err())
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	if err := r.execInsertTransaction(ctx, r.db, tx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.Type,
		"flow", tx.Flow,
		"account_id", tx.AccountID,
		"amount", tx.Amount.String())
	return nil
}

// InsertTransactionBatch writes several transactions inside one database
// transaction. Transfer pairs go through here so a transfer is never
// observably half-written.
func (r *SQLiteRepository) InsertTransactionBatch(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin batch insert", err)
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if err := r.execInsertTransaction(ctx, dbTx, tx); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return storeErr("commit batch insert", err)
	}
	slog.InfoContext(ctx, "Transaction batch saved", "count", len(txs))
	return nil
}

// UpdateTransaction replaces the full record; edits are not patches.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, flow = ?, account_id = ?, category_id = ?, amount = ?, currency = ?, date = ?, note = ?, tags = ?
		 WHERE id = ?`,
		string(tx.Type), string(tx.Flow), tx.AccountID, tx.CategoryID,
		tx.Amount.String(), tx.Currency, tx.Date.Format(dateLayout),
		tx.Note, strings.Join(tx.Tags, ","), tx.ID)
	return storeErr("update transaction", err)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return storeErr("delete transaction", err)
}

func (r *SQLiteRepository) ListRefunds(ctx context.Context) ([]core.Refund, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, transaction_id, account_id, amount, currency, date, note, photo_path
		 FROM refunds ORDER BY date`)
	if err != nil {
		return nil, storeErr("list refunds", err)
	}
	defer rows.Close()

	var refunds []core.Refund
	for rows.Next() {
		var ref core.Refund
		var amount, date string
		if err := rows.Scan(&ref.ID, &ref.TransactionID, &ref.AccountID, &amount, &ref.Currency, &date, &ref.Note, &ref.PhotoPath); err != nil {
			return nil, storeErr("scan refund", err)
		}
		if ref.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storeErr("parse refund amount", err)
		}
		if ref.Date, err = parseDate(date); err != nil {
			return nil, storeErr("parse refund date", err)
		}
		refunds = append(refunds, ref)
	}
	return refunds, storeErr("list refunds", rows.Err())
}

func (r *SQLiteRepository) InsertRefund(ctx context.Context, ref core.Refund) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refunds (id, transaction_id, account_id, amount, currency, date, note, photo_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.TransactionID, ref.AccountID, ref.Amount.String(), ref.Currency,
		ref.Date.Format(dateLayout), ref.Note, ref.PhotoPath)
	if err != nil {
		return storeErr("insert refund", err)
	}
	slog.InfoContext(ctx, "Refund saved",
		"id", ref.ID,
		"transaction_id", ref.TransactionID,
		"amount", ref.Amount.String())
	return nil
}

func (r *SQLiteRepository) ListCategoryBudgets(ctx context.Context) ([]core.CategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, period, cap FROM category_budgets ORDER BY category_id, period`)
	if err != nil {
		return nil, storeErr("list category budgets", err)
	}
	defer rows.Close()

	var budgets []core.CategoryBudget
	for rows.Next() {
		var b core.CategoryBudget
		var cap sql.NullString
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Period, &cap); err != nil {
			return nil, storeErr("scan category budget", err)
		}
		if cap.Valid {
			d, err := decimal.NewFromString(cap.String)
			if err != nil {
				return nil, storeErr("parse budget cap", err)
			}
			b.Cap = &d
		}
		budgets = append(budgets, b)
	}
	return budgets, storeErr("list category budgets", rows.Err())
}

func (r *SQLiteRepository) InsertCategoryBudget(ctx context.Context, b core.CategoryBudget) error {
	cap := sql.NullString{}
	if b.Cap != nil {
		cap = sql.NullString{String: b.Cap.String(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_budgets (id, category_id, period, cap) VALUES (?, ?, ?, ?)`,
		b.ID, b.CategoryID, b.Period, cap)
	return storeErr("insert category budget", err)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) execInsertTransaction(ctx context.Context, db execer, tx core.Transaction) error {
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO transactions (id, type, flow, account_id, category_id, amount, currency, date, note, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Type), string(tx.Flow), tx.AccountID, tx.CategoryID,
		tx.Amount.String(), tx.Currency, tx.Date.Format(dateLayout),
		tx.Note, strings.Join(tx.Tags, ","), createdAt)
	return storeErr("insert transaction", err)
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var tx core.Transaction
	var amount, date, tags string
	if err := rows.Scan(&tx.ID, &tx.Type, &tx.Flow, &tx.AccountID, &tx.CategoryID,
		&amount, &tx.Currency, &date, &tx.Note, &tags, &tx.CreatedAt); err != nil {
		return core.Transaction{}, err
	}

	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if tx.Date, err = parseDate(date); err != nil {
		return core.Transaction{}, err
	}
	if tags != "" {
		tx.Tags = strings.Split(tags, ",")
	}
	return tx, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
