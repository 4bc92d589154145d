package input

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// SearchRequest is one page of a faceted query.
type SearchRequest struct {
	Facets   []string
	Query    string
	Page     int
	PageSize int
}

// Offset is the hit offset of the requested page.
func (r SearchRequest) Offset() int {
	return r.Page * r.PageSize
}

// SearchPage is what a fetch returns for a SearchRequest.
type SearchPage[T any] struct {
	Hits      []T
	Offset    int
	TotalHits int
}

// FetchFunc runs a search. ok is false when the search failed and the failure
// was already reported; the cursor then keeps its previous results.
type FetchFunc[T any] func(SearchRequest) (page SearchPage[T], ok bool)

// SearchCursor is a paged result list that only re-queries when the facets or
// the query text change, or when the page is flipped.
type SearchCursor[T any] struct {
	fetch    FetchFunc[T]
	pageSize int

	facets []string
	query  string
	primed bool

	hits  []T
	page  int
	total int
	index int
}

// NewSearchCursor returns an empty cursor. pageSize <= 0 means 10.
func NewSearchCursor[T any](fetch FetchFunc[T], pageSize int) *SearchCursor[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &SearchCursor[T]{fetch: fetch, pageSize: pageSize, index: -1}
}

// TrySearch queries page 0 when the facets or the query differ from the last
// search. Returns whether a search was issued.
func (s *SearchCursor[T]) TrySearch(facets []string, query string) bool {
	if s.primed && slices.Equal(facets, s.facets) && query == s.query {
		return false
	}
	s.primed = true
	s.facets = slices.Clone(facets)
	s.query = query
	s.page = 0
	s.search()
	return true
}

// Refresh re-issues the current page.
func (s *SearchCursor[T]) Refresh() {
	s.search()
}

func (s *SearchCursor[T]) search() {
	res, ok := s.fetch(SearchRequest{
		Facets:   s.facets,
		Query:    s.query,
		Page:     s.page,
		PageSize: s.pageSize,
	})
	if !ok {
		return
	}
	s.hits = res.Hits
	s.page = res.Offset / s.pageSize
	s.total = res.TotalHits
	s.index = -1
}

// HandleKey flips pages with Left/Right and moves the selection with
// Up/Down/PgUp/PgDn.
func (s *SearchCursor[T]) HandleKey(msg tea.KeyMsg) bool {
	n := len(s.hits)
	switch msg.Type {
	case tea.KeyLeft:
		if s.page > 0 {
			s.page--
			s.search()
		}
	case tea.KeyRight:
		if (s.page+1)*s.pageSize < s.total {
			s.page++
			s.search()
		}
	case tea.KeyUp:
		if s.index < 0 {
			if n > 0 {
				s.index = 0
			}
		} else if s.index > 0 {
			s.index--
		}
	case tea.KeyDown:
		if s.index < 0 {
			if n > 0 {
				s.index = 0
			}
		} else if s.index+1 < n {
			s.index++
		}
	case tea.KeyPgUp:
		if n > 0 {
			s.index = 0
		}
	case tea.KeyPgDown:
		if n > 0 {
			s.index = n - 1
		}
	default:
		return false
	}
	return true
}

// Selected returns the selected hit.
func (s *SearchCursor[T]) Selected() (T, bool) {
	if s.index < 0 || s.index >= len(s.hits) {
		var zero T
		return zero, false
	}
	return s.hits[s.index], true
}

// Select picks the hit at i on the current page; out of range clears it.
func (s *SearchCursor[T]) Select(i int) {
	if i < 0 || i >= len(s.hits) {
		s.index = -1
		return
	}
	s.index = i
}

func (s *SearchCursor[T]) Index() int { return s.index }
func (s *SearchCursor[T]) Hits() []T  { return s.hits }
func (s *SearchCursor[T]) Page() int  { return s.page }
func (s *SearchCursor[T]) Total() int { return s.total }

// Pages is the number of pages the total hit count spans.
func (s *SearchCursor[T]) Pages() int {
	return (s.total + s.pageSize - 1) / s.pageSize
}
