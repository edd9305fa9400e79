// Package querystate owns the canonical filter and pagination state.
//
// The state lives in a Location, a path plus query string shaped exactly
// like the URLs of the original web client, so a rendered location is
// shareable and restorable. Everything else in the application derives
// its filter view from the current Location; there is no second mutable
// store to fall out of sync.
package querystate

import (
	"net/url"
	"strconv"
	"sync"
)

// Query parameter keys persisted in a Location.
const (
	KeyAccount  = "account"
	KeyCategory = "category"
	KeyDateFrom = "date_from"
	KeyDateTo   = "date_to"
	KeySearch   = "search"
	KeyPage     = "page"
	KeyYear     = "year"
)

// View paths.
const (
	PathTransactions = "/transactions"
	PathDashboard    = "/dashboard"
	PathImport       = "/import"
)

// Location is an addressable view state: a path and its query values.
type Location struct {
	Path  string
	Query url.Values
}

// NewLocation returns a Location for path with an empty query.
func NewLocation(path string) Location {
	return Location{Path: path, Query: url.Values{}}
}

// Parse restores a Location from its string form, e.g.
// "/transactions?account=Alior&page=2".
func Parse(s string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: u.Path, Query: u.Query()}, nil
}

// String renders the canonical form: keys sorted, empty query omitted.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

func (l Location) clone() Location {
	q := make(url.Values, len(l.Query))
	for k, vs := range l.Query {
		q[k] = append([]string(nil), vs...)
	}
	return Location{Path: l.Path, Query: q}
}

// Merge applies updates to the query string and returns the new
// Location. An empty value removes its key, keeping locations canonical
// and short. Changing anything other than the page itself drops the
// page key: a stale page number must never survive a filter change.
func Merge(loc Location, updates map[string]string) Location {
	next := loc.clone()
	if next.Query == nil {
		next.Query = url.Values{}
	}
	filterChanged := false
	for key, value := range updates {
		if value == "" {
			next.Query.Del(key)
		} else {
			next.Query.Set(key, value)
		}
		if key != KeyPage {
			filterChanged = true
		}
	}
	if filterChanged {
		next.Query.Del(KeyPage)
	}
	return next
}

// Filters is the transaction-list projection of a Location.
type Filters struct {
	Account    string
	CategoryID string
	DateFrom   string
	DateTo     string
	Search     string
	Page       int
}

// FiltersFrom projects the list filters out of a Location. Page is
// 1-based; anything absent or unparsable resolves to page 1.
func FiltersFrom(loc Location) Filters {
	f := Filters{
		Account:    loc.Query.Get(KeyAccount),
		CategoryID: loc.Query.Get(KeyCategory),
		DateFrom:   loc.Query.Get(KeyDateFrom),
		DateTo:     loc.Query.Get(KeyDateTo),
		Search:     loc.Query.Get(KeySearch),
		Page:       1,
	}
	if page, err := strconv.Atoi(loc.Query.Get(KeyPage)); err == nil && page > 0 {
		f.Page = page
	}
	return f
}

// Active reports whether any narrowing filter is set (page excluded).
func (f Filters) Active() bool {
	return f.Account != "" || f.CategoryID != "" || f.DateFrom != "" || f.DateTo != "" || f.Search != ""
}

// DashboardFilters is the reduced dashboard projection: account and
// year only, no date range or search.
type DashboardFilters struct {
	Account string
	Year    string
}

// DashboardFrom projects the dashboard filters out of a Location.
func DashboardFrom(loc Location) DashboardFilters {
	return DashboardFilters{
		Account: loc.Query.Get(KeyAccount),
		Year:    loc.Query.Get(KeyYear),
	}
}

// Store holds the current Location and notifies subscribers when it
// changes. It is passed by reference to whoever needs it; nothing in
// the program reads navigation state from a package-level variable.
type Store struct {
	mu   sync.Mutex
	loc  Location
	subs []func(Location)
}

// NewStore returns a Store positioned at initial.
func NewStore(initial Location) *Store {
	return &Store{loc: initial.clone()}
}

// Location returns a copy of the current location.
func (s *Store) Location() Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc.clone()
}

// Navigate replaces the current location and notifies subscribers.
// This is the sole signal the fetch orchestrators listen to.
func (s *Store) Navigate(loc Location) {
	s.mu.Lock()
	s.loc = loc.clone()
	subs := append(([]func(Location))(nil), s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(loc.clone())
	}
}

// Merge merges updates into the current location and navigates to the
// result, returning the new location.
func (s *Store) Merge(updates map[string]string) Location {
	next := Merge(s.Location(), updates)
	s.Navigate(next)
	return next
}

// Subscribe registers fn to run on every navigation.
func (s *Store) Subscribe(fn func(Location)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
