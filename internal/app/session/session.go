package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"tripdesk/internal/domain/party"
	"tripdesk/internal/domain/search"
)

var (
	// ErrNoContinuationToken means NextPage was called before Start, after a
	// cancel cleared the token, or past the last page.
	ErrNoContinuationToken = errors.New("session: no continuation token held")
	// ErrSessionBusy rejects a second request while one is in flight. Pages
	// must never be fetched concurrently or the held token can end up
	// inconsistent with the pages already accumulated.
	ErrSessionBusy = errors.New("session: request already in flight")
	// ErrSessionCancelled is returned to the caller whose in-flight request
	// lost to a Cancel or a replacing Start.
	ErrSessionCancelled = errors.New("session: cancelled")
)

// State of the session machine.
type State string

const (
	StateIdle      State = "IDLE"
	StateFetching  State = "FETCHING"
	StateReady     State = "READY"
	StateExhausted State = "EXHAUSTED"
	StateErrored   State = "ERRORED"
)

// PageRequest carries everything the provider needs for one page.
type PageRequest struct {
	Stay        search.SearchContext
	Occupancies []party.Occupancy
	FilterBy    *search.FilterBy
	SortBy      search.SortBy
	Page        int
	TraceID     string
}

// Pager fetches one page of hotel results from the provider.
type Pager interface {
	FetchPage(ctx context.Context, req PageRequest) (search.Page, error)
}

// Session owns one logical hotel search: the page-1 request, the provider's
// continuation token, and every follow-up page issued against that token.
// The occupancies/filterBy/sortBy frozen at Start are reused verbatim for
// every page; changing filters means starting a new session.
type Session struct {
	id     string
	pager  Pager
	logger *slog.Logger

	stay        search.SearchContext
	occupancies []party.Occupancy
	filterBy    *search.FilterBy
	sortBy      search.SortBy

	mu         sync.Mutex
	state      State
	token      string
	page       int
	hasNext    bool
	generation uint64
	abort      context.CancelFunc
}

func New(id string, pager Pager, stay search.SearchContext, occupancies []party.Occupancy, filterBy *search.FilterBy, sortBy search.SortBy, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:          id,
		pager:       pager,
		logger:      logger,
		stay:        stay,
		occupancies: occupancies,
		filterBy:    filterBy,
		sortBy:      sortBy,
		state:       StateIdle,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Stay() search.SearchContext { return s.stay }

// TraceID exposes the held continuation token for calls that are scoped to
// this session, such as the hotel details fetch.
func (s *Session) TraceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start requests page 1, discarding any previously held continuation token.
func (s *Session) Start(ctx context.Context) (search.Page, error) {
	s.mu.Lock()
	if s.state == StateFetching {
		s.mu.Unlock()
		return search.Page{}, ErrSessionBusy
	}
	s.generation++
	gen := s.generation
	s.token = ""
	s.page = 0
	s.hasNext = false
	s.state = StateFetching
	fetchCtx, cancel := context.WithCancel(ctx)
	s.abort = cancel
	req := s.requestLocked(1, "")
	s.mu.Unlock()

	page, err := s.pager.FetchPage(fetchCtx, req)
	cancel()
	return s.apply(gen, page, err)
}

// NextPage requests the page after the last one observed, reusing the held
// continuation token and the query frozen at Start.
func (s *Session) NextPage(ctx context.Context) (search.Page, error) {
	s.mu.Lock()
	if s.state == StateFetching {
		s.mu.Unlock()
		return search.Page{}, ErrSessionBusy
	}
	if s.token == "" || !s.hasNext {
		s.mu.Unlock()
		return search.Page{}, ErrNoContinuationToken
	}
	gen := s.generation
	s.state = StateFetching
	fetchCtx, cancel := context.WithCancel(ctx)
	s.abort = cancel
	req := s.requestLocked(s.page+1, s.token)
	s.mu.Unlock()

	page, err := s.pager.FetchPage(fetchCtx, req)
	cancel()
	return s.apply(gen, page, err)
}

// Cancel aborts any in-flight request. A late response for the aborted
// request is discarded by generation, so a cancel followed by an immediate
// restart can never pick up the stale page.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.abort != nil {
		s.abort()
		s.abort = nil
	}
	if s.state != StateFetching {
		return
	}
	if s.token != "" {
		s.state = StateReady
	} else {
		s.state = StateIdle
	}
}

func (s *Session) requestLocked(page int, token string) PageRequest {
	return PageRequest{
		Stay:        s.stay,
		Occupancies: s.occupancies,
		FilterBy:    s.filterBy,
		SortBy:      s.sortBy,
		Page:        page,
		TraceID:     token,
	}
}

func (s *Session) apply(gen uint64, page search.Page, err error) (search.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// the session moved on while this request was in flight
		s.logger.Debug("discarding stale page response", "session_id", s.id, "page", page.PageNumber)
		return search.Page{}, ErrSessionCancelled
	}
	s.abort = nil
	if err != nil {
		// retryable: the held token, if any, stays valid
		s.state = StateErrored
		return search.Page{}, err
	}
	if page.ContinuationToken != "" {
		s.token = page.ContinuationToken
	}
	if page.PageNumber == 0 {
		// provider omitted currentPage; trust our own counter
		page.PageNumber = s.page + 1
	}
	s.page = page.PageNumber
	s.hasNext = page.HasNextPage
	if page.HasNextPage {
		s.state = StateReady
	} else {
		s.state = StateExhausted
	}
	return page, nil
}
