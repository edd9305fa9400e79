package services

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"grosz/internal/core"
	"grosz/internal/gateway"
	"grosz/internal/log"
	"grosz/internal/querystate"
)

// DashboardResult is the outcome of one dashboard fetch cycle: the raw
// aggregate rows plus everything the derivation pipeline makes of them.
type DashboardResult struct {
	Monthly    []core.MonthlyStat
	Categories []core.CategoryStat

	Summary core.Summary
	Series  []core.MonthlyPoint
	Slices  []core.CategorySlice
}

// DashboardState is a snapshot of the dashboard view's data. While the
// phase is loading the KPI fields must not be rendered; the previous
// numbers are stale by definition.
type DashboardState struct {
	Phase Phase
	Err   string

	Summary core.Summary
	Series  []core.MonthlyPoint
	Slices  []core.CategorySlice
}

// DashboardService orchestrates the two aggregate fetches. Both run
// concurrently per cycle; the cycle fails if either fails.
type DashboardService struct {
	gw     Gateway
	logger *log.Logger

	mu    sync.Mutex
	gen   uint64
	state DashboardState

	yearsLoaded bool
	years       []string
}

// NewDashboardService creates a dashboard orchestrator.
func NewDashboardService(gw Gateway, logger *log.Logger) *DashboardService {
	return &DashboardService{
		gw:     gw,
		logger: logger.WithComponent(log.ComponentDashboard),
	}
}

// Begin starts a fetch cycle; see ListService.Begin.
func (s *DashboardService) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.Phase = PhaseLoading
	s.state.Err = ""
	return s.gen
}

// Fetch fires the monthly and category aggregate requests concurrently
// and runs the derivation pipeline over the results.
func (s *DashboardService) Fetch(ctx context.Context, f querystate.DashboardFilters) (*DashboardResult, error) {
	q := gateway.StatsQuery{Account: f.Account, Year: f.Year}
	result := &DashboardResult{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monthly, err := s.gw.MonthlyStats(ctx, q)
		if err != nil {
			return err
		}
		result.Monthly = monthly
		return nil
	})
	g.Go(func() error {
		categories, err := s.gw.CategoryStats(ctx, q)
		if err != nil {
			return err
		}
		result.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Summary = core.Summarize(result.Monthly, result.Categories)
	result.Series = core.MonthlySeries(result.Monthly)
	result.Slices = core.ExpenseSlices(result.Categories)
	return result, nil
}

// Complete finishes the cycle identified by gen; stale generations are
// discarded.
func (s *DashboardService) Complete(gen uint64, result *DashboardResult, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("Discarding stale fetch result",
			log.FieldGeneration, gen, "current", s.gen)
		return false
	}

	if err != nil {
		s.state.Phase = PhaseError
		s.state.Err = err.Error()
		s.logger.Warn("Dashboard fetch failed",
			log.FieldGeneration, gen, log.FieldError, err)
		return true
	}

	s.state.Phase = PhaseSuccess
	s.state.Err = ""
	s.state.Summary = result.Summary
	s.state.Series = result.Series
	s.state.Slices = result.Slices
	return true
}

// Refresh runs one full cycle synchronously.
func (s *DashboardService) Refresh(ctx context.Context, f querystate.DashboardFilters) bool {
	gen := s.Begin()
	result, err := s.Fetch(ctx, f)
	return s.Complete(gen, result, err)
}

// State returns a snapshot of the current dashboard state.
func (s *DashboardService) State() DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Years returns the selectable years, derived from one unfiltered
// monthly aggregate fetch. The result is kept for the session; a
// failed fetch is retried on the next call.
func (s *DashboardService) Years(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if s.yearsLoaded {
		years := s.years
		s.mu.Unlock()
		return years, nil
	}
	s.mu.Unlock()

	monthly, err := s.gw.MonthlyStats(ctx, gateway.StatsQuery{})
	if err != nil {
		return nil, err
	}
	years := core.Years(monthly)

	s.mu.Lock()
	s.years = years
	s.yearsLoaded = true
	s.mu.Unlock()
	return years, nil
}
