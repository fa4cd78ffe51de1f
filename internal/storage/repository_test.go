package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"expensetracker/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func mustCreate(t *testing.T, repo *SQLiteRepository, e core.Expense) int64 {
	t.Helper()

	id, err := repo.CreateExpense(context.Background(), e)
	if err != nil {
		t.Fatalf("CreateExpense(%+v) error = %v", e, err)
	}
	return id
}

func TestCreateExpense_IDsStrictlyIncreasing(t *testing.T) {
	repo := newTestRepo(t)

	var last int64
	for i := 0; i < 5; i++ {
		id := mustCreate(t, repo, core.Expense{Date: "2024-01-10", Amount: 9.99, Category: "Food & Dining"})
		if id <= last {
			t.Errorf("id %d not strictly greater than previous id %d", id, last)
		}
		last = id
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	repo := newTestRepo(t)

	tests := []struct {
		name    string
		expense core.Expense
		wantErr error
	}{
		{
			name:    "empty date",
			expense: core.Expense{Amount: 5, Category: "Travel"},
			wantErr: core.ErrEmptyDate,
		},
		{
			name:    "empty category",
			expense: core.Expense{Date: "2024-03-01", Amount: 5},
			wantErr: core.ErrEmptyCategory,
		},
		{
			name:    "negative amount is a refund, not an error",
			expense: core.Expense{Date: "2024-03-01", Amount: -12.50, Category: "Shopping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateExpense(context.Background(), tt.expense)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inRangeOld := mustCreate(t, repo, core.Expense{Date: "2024-01-01", Amount: 10, Category: "Food & Dining"})
	inRangeNewA := mustCreate(t, repo, core.Expense{Date: "2024-01-31", Amount: 20, Category: "Travel"})
	inRangeNewB := mustCreate(t, repo, core.Expense{Date: "2024-01-31", Amount: 30, Category: "Travel"})
	mustCreate(t, repo, core.Expense{Date: "2024-02-01", Amount: 40, Category: "Travel"})
	mustCreate(t, repo, core.Expense{Date: "2023-12-31", Amount: 50, Category: "Travel"})

	got, err := repo.ListExpenses(ctx, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}

	// Newest first: date DESC, then id DESC within the same date.
	wantIDs := []int64{inRangeNewB, inRangeNewA, inRangeOld}
	if len(got) != len(wantIDs) {
		t.Fatalf("ListExpenses() returned %d rows, want %d", len(got), len(wantIDs))
	}
	for i, e := range got {
		if e.ID != wantIDs[i] {
			t.Errorf("row %d: id = %d, want %d", i, e.ID, wantIDs[i])
		}
	}
}

func TestListExpenses_EmptyRange(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.ListExpenses(context.Background(), "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListExpenses() on empty table returned %d rows, want 0", len(got))
	}
}

func TestSummarize(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, core.Expense{Date: "2024-01-05", Amount: 10, Category: "Food & Dining"})
	mustCreate(t, repo, core.Expense{Date: "2024-01-10", Amount: 15, Category: "Food & Dining"})
	mustCreate(t, repo, core.Expense{Date: "2024-01-15", Amount: 100, Category: "Travel"})
	mustCreate(t, repo, core.Expense{Date: "2024-02-15", Amount: 999, Category: "Travel"}) // outside range

	got, err := repo.Summarize(ctx, "2024-01-01", "2024-01-31", "")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	want := []core.CategorySummary{
		{Category: "Travel", TotalAmount: 100, Count: 1},
		{Category: "Food & Dining", TotalAmount: 25, Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Summarize() returned %d groups, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s != want[i] {
			t.Errorf("group %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestSummarize_CategoryFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, core.Expense{Date: "2024-01-05", Amount: 10, Category: "Food & Dining"})
	mustCreate(t, repo, core.Expense{Date: "2024-01-15", Amount: 100, Category: "Travel"})

	got, err := repo.Summarize(ctx, "2024-01-01", "2024-01-31", "Travel")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(got) != 1 || got[0].Category != "Travel" || got[0].TotalAmount != 100 {
		t.Errorf("Summarize() with filter = %+v, want single Travel group totalling 100", got)
	}

	// No matching rows: empty result, never a zero-row group.
	got, err = repo.Summarize(ctx, "2024-01-01", "2024-01-31", "Healthcare")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Summarize() with unmatched filter = %+v, want empty", got)
	}
}

func TestPatchExpense(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	floatPtr := func(f float64) *float64 { return &f }

	base := core.Expense{
		Date:        "2024-01-10",
		Amount:      42.50,
		Category:    "Food & Dining",
		Subcategory: "Groceries",
		Note:        "weekly shop",
	}

	tests := []struct {
		name  string
		patch core.ExpensePatch
		want  core.Expense
	}{
		{
			name:  "category only, everything else untouched",
			patch: core.ExpensePatch{Category: strPtr("Shopping")},
			want: core.Expense{
				Date: base.Date, Amount: base.Amount, Category: "Shopping",
				Subcategory: base.Subcategory, Note: base.Note,
			},
		},
		{
			name:  "explicit empty string clears note",
			patch: core.ExpensePatch{Note: strPtr("")},
			want: core.Expense{
				Date: base.Date, Amount: base.Amount, Category: base.Category,
				Subcategory: base.Subcategory, Note: "",
			},
		},
		{
			name:  "explicit zero amount updates",
			patch: core.ExpensePatch{Amount: floatPtr(0)},
			want: core.Expense{
				Date: base.Date, Amount: 0, Category: base.Category,
				Subcategory: base.Subcategory, Note: base.Note,
			},
		},
		{
			name: "several fields at once",
			patch: core.ExpensePatch{
				Date:   strPtr("2024-02-01"),
				Amount: floatPtr(10),
				Note:   strPtr("corrected"),
			},
			want: core.Expense{
				Date: "2024-02-01", Amount: 10, Category: base.Category,
				Subcategory: base.Subcategory, Note: "corrected",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			ctx := context.Background()
			id := mustCreate(t, repo, base)

			updated, err := repo.PatchExpense(ctx, id, tt.patch)
			if err != nil {
				t.Fatalf("PatchExpense() error = %v", err)
			}
			if updated != 1 {
				t.Fatalf("PatchExpense() rows = %d, want 1", updated)
			}

			rows, err := repo.ListExpenses(ctx, "2024-01-01", "2024-12-31")
			if err != nil {
				t.Fatalf("ListExpenses() error = %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 row after patch, got %d", len(rows))
			}

			got := rows[0]
			tt.want.ID = id
			if got != tt.want {
				t.Errorf("after patch: %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPatchExpense_NoFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := mustCreate(t, repo, core.Expense{Date: "2024-01-10", Amount: 5, Category: "Other", Note: "before"})

	_, err := repo.PatchExpense(ctx, id, core.ExpensePatch{})
	if !errors.Is(err, ErrNoFields) {
		t.Fatalf("PatchExpense() error = %v, want ErrNoFields", err)
	}

	rows, err := repo.ListExpenses(ctx, "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if rows[0].Note != "before" {
		t.Errorf("empty patch mutated storage: note = %q", rows[0].Note)
	}
}

func TestPatchExpense_UnknownID(t *testing.T) {
	repo := newTestRepo(t)

	note := "x"
	updated, err := repo.PatchExpense(context.Background(), 9999, core.ExpensePatch{Note: &note})
	if err != nil {
		t.Fatalf("PatchExpense() error = %v", err)
	}
	if updated != 0 {
		t.Errorf("PatchExpense() rows = %d, want 0 for unknown id", updated)
	}
}

func TestDeleteExpense_Twice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := mustCreate(t, repo, core.Expense{Date: "2024-01-10", Amount: 5, Category: "Other"})

	deleted, err := repo.DeleteExpense(ctx, id)
	if err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("first DeleteExpense() rows = %d, want 1", deleted)
	}

	deleted, err = repo.DeleteExpense(ctx, id)
	if err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("second DeleteExpense() rows = %d, want 0", deleted)
	}
}

func TestSearchExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	uber := mustCreate(t, repo, core.Expense{Date: "2024-03-02", Amount: 18, Category: "Transportation", Note: "Uber ride"})
	food := mustCreate(t, repo, core.Expense{Date: "2024-03-05", Amount: 30, Category: "Food & Dining", Subcategory: "Restaurants"})
	socks := mustCreate(t, repo, core.Expense{Date: "2024-03-01", Amount: 12, Category: "Shopping", Note: "socks"})

	tests := []struct {
		name    string
		keyword string
		wantIDs []int64
	}{
		{
			name:    "case-insensitive note match",
			keyword: "uber",
			wantIDs: []int64{uber},
		},
		{
			name:    "subcategory match",
			keyword: "restaur",
			wantIDs: []int64{food},
		},
		{
			name:    "category match, newest first",
			keyword: "o", // Food & Dining, Transportation, Shopping all contain o
			wantIDs: []int64{food, uber, socks},
		},
		{
			name:    "LIKE wildcard matches literally",
			keyword: "%",
			wantIDs: nil,
		},
		{
			name:    "no match",
			keyword: "helicopter",
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchExpenses(ctx, tt.keyword)
			if err != nil {
				t.Fatalf("SearchExpenses(%q) error = %v", tt.keyword, err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("SearchExpenses(%q) returned %d rows, want %d", tt.keyword, len(got), len(tt.wantIDs))
			}
			for i, e := range got {
				if e.ID != tt.wantIDs[i] {
					t.Errorf("row %d: id = %d, want %d", i, e.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestMonthlyReport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, core.Expense{Date: "2024-01-05", Amount: 10, Category: "Other"})
	mustCreate(t, repo, core.Expense{Date: "2024-01-20", Amount: 5, Category: "Other"})
	mustCreate(t, repo, core.Expense{Date: "2024-03-10", Amount: 7, Category: "Other"})
	mustCreate(t, repo, core.Expense{Date: "2023-01-10", Amount: 999, Category: "Other"}) // other year

	got, err := repo.MonthlyReport(ctx, "2024")
	if err != nil {
		t.Fatalf("MonthlyReport() error = %v", err)
	}

	// February has no rows and is omitted; months are zero-padded, ASC.
	want := []core.MonthlySummary{
		{Month: "01", TotalAmount: 15, Count: 2},
		{Month: "03", TotalAmount: 7, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("MonthlyReport() returned %d months, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s != want[i] {
			t.Errorf("month %d = %+v, want %+v", i, s, want[i])
		}
	}
}

func TestMonthlyReport_EmptyYear(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.MonthlyReport(context.Background(), "1999")
	if err != nil {
		t.Fatalf("MonthlyReport() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("MonthlyReport() for empty year = %+v, want empty", got)
	}
}
