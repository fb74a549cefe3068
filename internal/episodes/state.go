package episodes

import (
	"sync"
	"time"

	"anistream/pkg/models"
)

// LoadTimeout force-stops the loading indicator even if data never
// arrives. Display-only: the underlying fetch is not cancelled.
const LoadTimeout = 10 * time.Second

const defaultPageSize = 10

// ListState is the navigable view over one title's episode groups: query
// filter, one-indexed pagination, and a single expandable row. It is
// session-local; a fresh view gets a fresh state.
type ListState struct {
	mu sync.Mutex

	groups   []models.EpisodeGroup
	filtered []models.EpisodeGroup
	query    string
	pageSize int
	page     int
	expanded int // episode number, 0 = none

	loading   bool
	loadErr   bool
	loadTimer *time.Timer
}

func NewListState() *ListState {
	return &ListState{pageSize: defaultPageSize, page: 1}
}

// SetLinks replaces the underlying data, regroups, and resets filter,
// page, and expansion.
func (s *ListState) SetLinks(links []models.DownloadLink) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.groups = Group(links)
	s.query = ""
	s.filtered = s.groups
	s.page = 1
	s.expanded = 0
}

// SetQuery refilters and jumps back to the first page.
func (s *ListState) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = q
	s.filtered = Filter(s.groups, q)
	s.page = 1
	s.expanded = 0
}

// SetPageSize is a no-op for sizes outside the allowed set.
func (s *ListState) SetPageSize(n int) {
	if !ValidPageSize(n) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
	s.page = 1
}

// SetPage ignores requests outside [1, PageCount]; the current page stays.
func (s *ListState) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > PageCount(len(s.filtered), s.pageSize) {
		return
	}
	s.page = n
}

// Select toggles expansion: selecting the expanded episode collapses it,
// selecting another moves the expansion there in one update.
func (s *ListState) Select(episode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded == episode {
		s.expanded = 0
		return
	}
	s.expanded = episode
}

func (s *ListState) Expanded() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded, s.expanded != 0
}

func (s *ListState) Page() []models.EpisodeGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := Paginate(s.filtered, s.pageSize, s.page)
	if !ok {
		return nil
	}
	return items
}

func (s *ListState) PageInfo() (page, pageCount, pageSize, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, PageCount(len(s.filtered), s.pageSize), s.pageSize, len(s.filtered)
}

// BeginLoading arms the display timeout. If FinishLoading does not arrive
// within LoadTimeout the loading flag drops and the error flag raises,
// independent of whether data eventually shows up.
func (s *ListState) BeginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = true
	s.loadErr = false
	if s.loadTimer != nil {
		s.loadTimer.Stop()
	}
	s.loadTimer = time.AfterFunc(LoadTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.loading {
			s.loading = false
			s.loadErr = true
		}
	})
}

func (s *ListState) FinishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
}

func (s *ListState) Loading() (loading, timedOut bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading, s.loadErr
}
