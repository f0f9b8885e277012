package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

// SearchState is the lifecycle state of the aggregated result set.
type SearchState string

const (
	SearchIdle      SearchState = "idle"
	SearchSearching SearchState = "searching"
	SearchPopulated SearchState = "populated"
	SearchEmpty     SearchState = "empty"
	SearchFailed    SearchState = "failed"
)

// SearchResultSet is a snapshot of the aggregator.
type SearchResultSet struct {
	Query        string
	Type         TypeFilter
	Year         string
	Page         int
	Items        []TitleSummary
	TotalResults int
	State        SearchState
	CanLoadMore  bool
	// Stale is set while Items still belong to an earlier query because the
	// first page of the current one has not loaded.
	Stale bool
}

// SearchAggregator accumulates paginated search results for one active
// query. Every query or filter change starts a new generation; a response
// is applied only while its generation is still current, so a slow reply
// for an old query can never overwrite a newer one.
type SearchAggregator struct {
	meta     MetadataClient
	notifier Notifier
	log      *log.Helper

	mu       sync.Mutex
	query    SearchQuery
	loaded   SearchQuery // query that items, page and total belong to
	page     int
	items    []TitleSummary
	total    int
	state    SearchState
	gen      uint64
	inflight bool
}

// NewSearchAggregator creates a new SearchAggregator in the idle state
func NewSearchAggregator(meta MetadataClient, notifier Notifier, logger log.Logger) *SearchAggregator {
	return &SearchAggregator{
		meta:     meta,
		notifier: notifier,
		log:      log.NewHelper(logger),
		query:    SearchQuery{Type: FilterAll},
		state:    SearchIdle,
	}
}

// Submit starts a new search for query from page 1.
func (s *SearchAggregator) Submit(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	s.mu.Lock()
	s.query.Query = query
	q, gen := s.restartLocked()
	s.mu.Unlock()

	return s.run(ctx, gen, q)
}

// SetFilter changes the type filter. With an active query the search
// restarts from page 1 immediately.
func (s *SearchAggregator) SetFilter(ctx context.Context, f TypeFilter) error {
	s.mu.Lock()
	year := s.query.Year
	s.mu.Unlock()
	return s.Refine(ctx, f, year)
}

// SetYear narrows the search to a release year; "" clears it.
func (s *SearchAggregator) SetYear(ctx context.Context, year string) error {
	s.mu.Lock()
	f := s.query.Type
	s.mu.Unlock()
	return s.Refine(ctx, f, year)
}

// Refine sets the type filter and year together, restarting the active
// query at most once.
func (s *SearchAggregator) Refine(ctx context.Context, f TypeFilter, year string) error {
	if f == "" {
		f = FilterAll
	}
	if !f.Valid() {
		return fmt.Errorf("invalid type filter %q", f)
	}
	year = strings.TrimSpace(year)
	s.mu.Lock()
	if s.query.Type == f && s.query.Year == year {
		s.mu.Unlock()
		return nil
	}
	s.query.Type = f
	s.query.Year = year
	return s.rerunLocked(ctx)
}

// LoadMore fetches the next page of the current query and appends it.
func (s *SearchAggregator) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.canLoadMoreLocked() {
		s.mu.Unlock()
		return ErrNoMoreResults
	}
	if s.inflight {
		s.mu.Unlock()
		return ErrBusy
	}
	q := s.query
	q.Page = s.page + 1
	gen := s.gen
	s.inflight = true
	s.state = SearchSearching
	s.mu.Unlock()

	return s.run(ctx, gen, q)
}

// Snapshot returns the current result set.
func (s *SearchAggregator) Snapshot() SearchResultSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SearchResultSet{
		Query:        s.query.Query,
		Type:         s.query.Type,
		Year:         s.query.Year,
		Page:         s.page,
		Items:        append([]TitleSummary(nil), s.items...),
		TotalResults: s.total,
		State:        s.state,
		CanLoadMore:  s.canLoadMoreLocked(),
		Stale:        s.query.Query != "" && s.loaded != s.query,
	}
}

func (s *SearchAggregator) canLoadMoreLocked() bool {
	return s.query.Query != "" && s.loaded == s.query && len(s.items) < s.total
}

// rerunLocked restarts the active query, if any, and releases s.mu.
func (s *SearchAggregator) rerunLocked(ctx context.Context) error {
	if s.query.Query == "" {
		s.mu.Unlock()
		return nil
	}
	q, gen := s.restartLocked()
	s.mu.Unlock()
	return s.run(ctx, gen, q)
}

func (s *SearchAggregator) restartLocked() (SearchQuery, uint64) {
	s.gen++
	s.inflight = true
	s.state = SearchSearching
	q := s.query
	q.Page = 1
	return q, s.gen
}

func (s *SearchAggregator) run(ctx context.Context, gen uint64, q SearchQuery) error {
	resp, err := s.meta.Search(ctx, q)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debugf("discarding stale search response for %q page %d", q.Query, q.Page)
		return nil
	}
	s.inflight = false

	if err != nil {
		if len(s.items) > 0 {
			s.state = SearchPopulated
		} else {
			s.state = SearchFailed
		}
		s.mu.Unlock()
		s.log.Errorf("search for %q page %d failed: %v", q.Query, q.Page, err)
		s.notifier.Notify(ctx, failure("Search failed", "Please check your internet connection and try again"))
		return fmt.Errorf("search failed: %w", err)
	}

	key := q
	key.Page = 0

	if !resp.OK {
		if q.Page == 1 {
			s.loaded = key
			s.items = nil
			s.total = 0
			s.page = 1
			s.state = SearchEmpty
		} else {
			s.state = SearchPopulated
		}
		s.mu.Unlock()
		msg := resp.Error
		if msg == "" {
			msg = "Try a different search term"
		}
		s.notifier.Notify(ctx, failure("No results found", msg))
		return nil
	}

	if q.Page == 1 {
		s.loaded = key
		s.items = append([]TitleSummary(nil), resp.Items...)
	} else {
		s.items = append(s.items, resp.Items...)
	}
	s.total = resp.TotalResults
	s.page = q.Page
	if len(s.items) == 0 {
		s.state = SearchEmpty
	} else {
		s.state = SearchPopulated
	}
	s.mu.Unlock()
	return nil
}
