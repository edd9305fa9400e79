// Package services orchestrates the fetch cycles behind the three
// views: the transaction list, the dashboard aggregates and the CSV
// import. Each fetch cycle carries a monotonically increasing
// generation; a response whose generation is no longer current is
// discarded, so the last navigation always determines what is shown.
package services

import (
	"context"
	"io"

	"grosz/internal/core"
	"grosz/internal/gateway"
)

// Gateway is the slice of the remote API the orchestrators consume.
type Gateway interface {
	ListTransactions(ctx context.Context, q gateway.ListQuery) (core.TransactionPage, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateCategory(ctx context.Context, id, categoryID int64) (core.Transaction, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	MonthlyStats(ctx context.Context, q gateway.StatsQuery) ([]core.MonthlyStat, error)
	CategoryStats(ctx context.Context, q gateway.StatsQuery) ([]core.CategoryStat, error)
	ImportCSV(ctx context.Context, filename string, r io.Reader) (core.ImportResult, error)
	Categorize(ctx context.Context) (int64, error)
}

var _ Gateway = (*gateway.Client)(nil)

// Phase is the state of one fetch cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}
