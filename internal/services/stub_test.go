package services

import (
	"context"
	"errors"
	"io"

	"grosz/internal/core"
	"grosz/internal/gateway"
	"grosz/internal/log"
)

// stubGateway implements Gateway with overridable behavior per method.
type stubGateway struct {
	listFn       func(ctx context.Context, q gateway.ListQuery) (core.TransactionPage, error)
	getFn        func(ctx context.Context, id int64) (core.Transaction, error)
	updateFn     func(ctx context.Context, id, categoryID int64) (core.Transaction, error)
	categoriesFn func(ctx context.Context) ([]core.Category, error)
	accountsFn   func(ctx context.Context) ([]core.Account, error)
	monthlyFn    func(ctx context.Context, q gateway.StatsQuery) ([]core.MonthlyStat, error)
	catStatsFn   func(ctx context.Context, q gateway.StatsQuery) ([]core.CategoryStat, error)
	importFn     func(ctx context.Context, filename string, r io.Reader) (core.ImportResult, error)
	categorizeFn func(ctx context.Context) (int64, error)
}

var errStubUnset = errors.New("stub method not set")

func (s *stubGateway) ListTransactions(ctx context.Context, q gateway.ListQuery) (core.TransactionPage, error) {
	if s.listFn == nil {
		return core.TransactionPage{}, errStubUnset
	}
	return s.listFn(ctx, q)
}

func (s *stubGateway) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	if s.getFn == nil {
		return core.Transaction{}, errStubUnset
	}
	return s.getFn(ctx, id)
}

func (s *stubGateway) UpdateCategory(ctx context.Context, id, categoryID int64) (core.Transaction, error) {
	if s.updateFn == nil {
		return core.Transaction{}, errStubUnset
	}
	return s.updateFn(ctx, id, categoryID)
}

func (s *stubGateway) ListCategories(ctx context.Context) ([]core.Category, error) {
	if s.categoriesFn == nil {
		return nil, nil
	}
	return s.categoriesFn(ctx)
}

func (s *stubGateway) ListAccounts(ctx context.Context) ([]core.Account, error) {
	if s.accountsFn == nil {
		return nil, nil
	}
	return s.accountsFn(ctx)
}

func (s *stubGateway) MonthlyStats(ctx context.Context, q gateway.StatsQuery) ([]core.MonthlyStat, error) {
	if s.monthlyFn == nil {
		return nil, errStubUnset
	}
	return s.monthlyFn(ctx, q)
}

func (s *stubGateway) CategoryStats(ctx context.Context, q gateway.StatsQuery) ([]core.CategoryStat, error) {
	if s.catStatsFn == nil {
		return nil, errStubUnset
	}
	return s.catStatsFn(ctx, q)
}

func (s *stubGateway) ImportCSV(ctx context.Context, filename string, r io.Reader) (core.ImportResult, error) {
	if s.importFn == nil {
		return core.ImportResult{}, errStubUnset
	}
	return s.importFn(ctx, filename, r)
}

func (s *stubGateway) Categorize(ctx context.Context) (int64, error) {
	if s.categorizeFn == nil {
		return 0, errStubUnset
	}
	return s.categorizeFn(ctx)
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func pageOf(rows ...core.Transaction) core.TransactionPage {
	return core.TransactionPage{
		Data:    rows,
		Total:   int64(len(rows)),
		Page:    1,
		PerPage: 50,
	}
}
