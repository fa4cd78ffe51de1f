package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoFields is returned by PatchExpense when the patch has no fields set.
// Storage is not touched in that case.
var ErrNoFields = errors.New("no fields provided to update")

const expenseColumns = "id, date, amount, category, subcategory, note"

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

// CreateExpense inserts one row and returns the storage-assigned id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (date, amount, category, subcategory, note) VALUES (?, ?, ?, ?, ?)",
		e.Date, e.Amount, e.Category, e.Subcategory, e.Note)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date,
		"amount", e.Amount,
		"category", e.Category)

	return id, nil
}

// ListExpenses returns all rows whose date falls in the inclusive
// [startDate, endDate] range, newest first (date DESC, id DESC).
func (r *SQLiteRepository) ListExpenses(ctx context.Context, startDate, endDate string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE date BETWEEN ? AND ? ORDER BY date DESC, id DESC",
		startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// Summarize groups the rows in the inclusive date range by category and
// sums their amounts. An empty category means no category filter.
// Groups are ordered by descending total; categories with no matching
// rows are never emitted.
func (r *SQLiteRepository) Summarize(ctx context.Context, startDate, endDate, category string) ([]core.CategorySummary, error) {
	query := `SELECT category, SUM(amount) AS total_amount, COUNT(*) AS count
		FROM expenses
		WHERE date BETWEEN ? AND ?`
	args := []any{startDate, endDate}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " GROUP BY category ORDER BY total_amount DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize expenses: %w", err)
	}
	defer rows.Close()

	summaries := []core.CategorySummary{}
	for rows.Next() {
		var s core.CategorySummary
		if err := rows.Scan(&s.Category, &s.TotalAmount, &s.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}

	return summaries, nil
}

// PatchExpense updates exactly the fields set on the patch for the row
// with the given id and returns the number of rows updated (0 or 1).
// Column names come from the fixed set below, never from the caller;
// only values are parameter-bound.
func (r *SQLiteRepository) PatchExpense(ctx context.Context, id int64, patch core.ExpensePatch) (int64, error) {
	var sets []string
	var args []any

	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *patch.Amount)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Subcategory != nil {
		sets = append(sets, "subcategory = ?")
		args = append(args, *patch.Subcategory)
	}
	if patch.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *patch.Note)
	}

	if len(sets) == 0 {
		return 0, ErrNoFields
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update expense: %w", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", id, "fields", len(sets), "rows", updated)

	return updated, nil
}

// DeleteExpense removes the row with the given id and returns the
// number of rows deleted (0 or 1).
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete expense: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "rows", deleted)

	return deleted, nil
}

// SearchExpenses returns rows whose note, category or subcategory
// contains the keyword (case-insensitive substring), newest first.
// LIKE metacharacters in the keyword match literally.
func (r *SQLiteRepository) SearchExpenses(ctx context.Context, keyword string) ([]core.Expense, error) {
	pattern := "%" + escapeLike(keyword) + "%"

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		WHERE note LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\' OR subcategory LIKE ? ESCAPE '\'
		ORDER BY date DESC, id DESC`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// MonthlyReport groups the rows of one calendar year by month.
// Months with no rows are omitted; results are ordered "01".."12".
func (r *SQLiteRepository) MonthlyReport(ctx context.Context, year string) ([]core.MonthlySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%m', date) AS month,
			SUM(amount) AS total_amount,
			COUNT(*) AS count
		FROM expenses
		WHERE strftime('%Y', date) = ?
		GROUP BY month
		ORDER BY month ASC`,
		year)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	defer rows.Close()

	summaries := []core.MonthlySummary{}
	for rows.Next() {
		var s core.MonthlySummary
		if err := rows.Scan(&s.Month, &s.TotalAmount, &s.Count); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return summaries, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	expenses := []core.Expense{}
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Subcategory, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return expenses, nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
