package core

import "errors"

var (
	ErrEmptyDate     = errors.New("empty date")
	ErrEmptyCategory = errors.New("empty category")
)

type (
	// Expense is a single row of the ledger. Dates are ISO YYYY-MM-DD
	// strings so that lexicographic comparison matches chronological order.
	Expense struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		Note        string  `json:"note"`
	}

	// ExpensePatch is a partial update. A nil field means "leave the
	// column as it is"; a non-nil field always updates, including
	// explicit empty strings and zero amounts.
	ExpensePatch struct {
		Date        *string
		Amount      *float64
		Category    *string
		Subcategory *string
		Note        *string
	}

	CategorySummary struct {
		Category    string  `json:"category"`
		TotalAmount float64 `json:"total_amount"`
		Count       int64   `json:"count"`
	}

	// MonthlySummary aggregates one calendar month. Month is the
	// zero-padded month component "01".."12".
	MonthlySummary struct {
		Month       string  `json:"month"`
		TotalAmount float64 `json:"total_amount"`
		Count       int64   `json:"count"`
	}
)

func (e Expense) Validate() error {
	if e.Date == "" {
		return ErrEmptyDate
	}
	if e.Category == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Fields returns how many fields the patch would update.
func (p ExpensePatch) Fields() int {
	n := 0
	for _, set := range []bool{
		p.Date != nil,
		p.Amount != nil,
		p.Category != nil,
		p.Subcategory != nil,
		p.Note != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
