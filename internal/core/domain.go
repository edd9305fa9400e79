package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Category source values assigned by the backend.
const (
	CategorySourceManual = "manual"
	CategorySourceAI     = "ai"
)

type (
	// Transaction is one imported bank transaction as served by the API.
	// Amount crosses the wire as a decimal string; it is never re-encoded
	// as a binary float. Negative = outflow, non-negative = inflow.
	Transaction struct {
		ID              int64           `json:"id"`
		Hash            string          `json:"hash"`
		AccountID       int64           `json:"account_id"`
		TransactionDate string          `json:"transaction_date"`
		BookingDate     *string         `json:"booking_date"`
		Counterparty    *string         `json:"counterparty"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Currency        string          `json:"currency"`
		CategoryID      *int64          `json:"category_id"`
		CategorySource  *string         `json:"category_source"`
		BankCategory    *string         `json:"bank_category"`
		BankReference   *string         `json:"bank_reference"`
		BankType        *string         `json:"bank_type"`
		State           *string         `json:"state"`
		RawData         json.RawMessage `json:"raw_data"`
		ImportedAt      *string         `json:"imported_at"`
	}

	// TransactionPage is one page of the transaction list. Page is the
	// authoritative page number; the server may clamp the requested one.
	TransactionPage struct {
		Data    []Transaction `json:"data"`
		Total   int64         `json:"total"`
		Page    int           `json:"page"`
		PerPage int           `json:"per_page"`
	}

	// Account names are unique and double as the account filter value.
	Account struct {
		ID               int64  `json:"id"`
		Name             string `json:"name"`
		Currency         string `json:"currency"`
		TransactionCount int64  `json:"transaction_count"`
	}

	Category struct {
		ID     int64   `json:"id"`
		Name   string  `json:"name"`
		NamePL *string `json:"name_pl"`
	}

	// MonthlyStat aggregates one YYYY-MM month under the active filters.
	// Income sums positive amounts, Expense sums negative ones, so
	// Expense is always <= 0.
	MonthlyStat struct {
		Month   string          `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}

	// CategoryStat aggregates one category; a nil Category is the
	// uncategorized bucket.
	CategoryStat struct {
		Category *string         `json:"category"`
		Total    decimal.Decimal `json:"total"`
		Count    int64           `json:"count"`
	}

	// ImportResult summarizes one CSV import. The server does not
	// guarantee Imported+Skipped == TotalRows and the client must not
	// assume it.
	ImportResult struct {
		TotalRows int `json:"total_rows"`
		Imported  int `json:"imported"`
		Skipped   int `json:"skipped"`
	}
)

// IsExpense reports whether the amount is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// CategoryByID builds an identity-keyed lookup map. The "not found"
// case stays an explicit map miss instead of a linear scan.
func CategoryByID(categories []Category) map[int64]Category {
	m := make(map[int64]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}

// AccountByID builds an identity-keyed lookup map.
func AccountByID(accounts []Account) map[int64]Account {
	m := make(map[int64]Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}
	return m
}
