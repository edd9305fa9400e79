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

// ListResult is the outcome of one list fetch cycle.
type ListResult struct {
	Rows  []core.Transaction
	Total int64
	// Page is the server-resolved page, which may differ from the
	// requested one.
	Page int

	Categories []core.Category
	Accounts   []core.Account
	// Identity-keyed lookups for label resolution. Nil when the
	// corresponding reference fetch failed; rows still render, labels
	// stay unresolved.
	CategoryByID map[int64]core.Category
	AccountByID  map[int64]core.Account
}

// ListState is a snapshot of the list view's data.
type ListState struct {
	Phase Phase
	Err   string

	Rows  []core.Transaction
	Total int64
	Page  int

	Categories   []core.Category
	Accounts     []core.Account
	CategoryByID map[int64]core.Category
	AccountByID  map[int64]core.Account
}

// ListService owns the transaction row collection. It has exactly two
// writers: a completed list fetch replaces the whole collection, and a
// confirmed category edit replaces a single row by identity. The
// generation counter keeps a stale full replace from clobbering newer
// data.
type ListService struct {
	gw      Gateway
	perPage int
	logger  *log.Logger

	mu    sync.Mutex
	gen   uint64
	state ListState
}

// NewListService creates a list orchestrator fetching perPage rows at
// a time.
func NewListService(gw Gateway, perPage int, logger *log.Logger) *ListService {
	return &ListService{
		gw:      gw,
		perPage: perPage,
		logger:  logger.WithComponent(log.ComponentList),
	}
}

// Begin starts a fetch cycle: bumps the generation, enters loading and
// clears any previous error. Returns the generation token the matching
// Complete call must present.
func (s *ListService) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.Phase = PhaseLoading
	s.state.Err = ""
	return s.gen
}

// Fetch performs the network round-trips for one cycle: the filtered
// transaction page plus the category and account reference lists, all
// concurrently. A reference lookup failure degrades gracefully — the
// list still loads, labels just stay unresolved — while a list failure
// fails the cycle.
func (s *ListService) Fetch(ctx context.Context, f querystate.Filters) (*ListResult, error) {
	result := &ListResult{}
	var catErr, accErr error

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.gw.ListTransactions(ctx, gateway.ListQuery{
			Account:    f.Account,
			CategoryID: f.CategoryID,
			DateFrom:   f.DateFrom,
			DateTo:     f.DateTo,
			Search:     f.Search,
			Page:       f.Page,
			PerPage:    s.perPage,
		})
		if err != nil {
			return err
		}
		result.Rows = page.Data
		result.Total = page.Total
		result.Page = page.Page
		return nil
	})
	g.Go(func() error {
		result.Categories, catErr = s.gw.ListCategories(ctx)
		return nil
	})
	g.Go(func() error {
		result.Accounts, accErr = s.gw.ListAccounts(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if catErr != nil {
		s.logger.Warn("Category lookup failed, labels stay unresolved", log.FieldError, catErr)
	} else {
		result.CategoryByID = core.CategoryByID(result.Categories)
	}
	if accErr != nil {
		s.logger.Warn("Account lookup failed, labels stay unresolved", log.FieldError, accErr)
	} else {
		result.AccountByID = core.AccountByID(result.Accounts)
	}

	return result, nil
}

// Complete finishes the cycle identified by gen. A stale generation is
// discarded and false is returned; the cycle that superseded it owns
// the state now.
func (s *ListService) Complete(gen uint64, result *ListResult, err error) bool {
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
		s.logger.Warn("List fetch failed",
			log.FieldGeneration, gen, log.FieldError, err)
		return true
	}

	s.state.Phase = PhaseSuccess
	s.state.Err = ""
	s.state.Rows = result.Rows
	s.state.Total = result.Total
	s.state.Page = result.Page
	if result.Categories != nil {
		s.state.Categories = result.Categories
		s.state.CategoryByID = result.CategoryByID
	}
	if result.Accounts != nil {
		s.state.Accounts = result.Accounts
		s.state.AccountByID = result.AccountByID
	}

	s.logger.Debug("List fetch completed",
		log.FieldGeneration, gen,
		log.FieldTotal, result.Total,
		log.FieldPage, result.Page)
	return true
}

// Refresh runs one full cycle synchronously: Begin, Fetch, Complete.
// Callers driving an event loop use the three steps separately so the
// fetch can run off the loop.
func (s *ListService) Refresh(ctx context.Context, f querystate.Filters) bool {
	gen := s.Begin()
	result, err := s.Fetch(ctx, f)
	return s.Complete(gen, result, err)
}

// State returns a snapshot of the current list state.
func (s *ListService) State() ListState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReplaceRow swaps in the server-confirmed row for its identity match,
// field for field. Rows keep their order; nothing else is touched.
// Returns false when no row with that id is currently held (e.g. a
// fresher page replaced the collection while the edit was in flight).
func (s *ListService) ReplaceRow(tx core.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Rows {
		if s.state.Rows[i].ID == tx.ID {
			s.state.Rows[i] = tx
			return true
		}
	}
	return false
}

// Detail fetches one transaction fresh from the server, bypassing the
// held collection so the bank-level fields are always current.
func (s *ListService) Detail(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := s.gw.GetTransaction(ctx, id)
	if err != nil {
		s.logger.Warn("Detail fetch failed", log.FieldRowID, id, log.FieldError, err)
		return core.Transaction{}, err
	}
	return tx, nil
}

// TotalPages derives the page count from the row total, minimum 1.
func (s *ListService) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perPage <= 0 {
		return 1
	}
	pages := int((s.state.Total + int64(s.perPage) - 1) / int64(s.perPage))
	if pages < 1 {
		return 1
	}
	return pages
}
