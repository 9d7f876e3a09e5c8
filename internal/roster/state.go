package roster

import "github.com/noah-isme/strack-api/internal/models"

// ViewState is the caller-owned UI state for one viewer. Changing the course
// filter or search term resets the reveal count to one page so a narrowed set
// never starts past its end. Sorting keeps the current reveal count.
//
// ViewState is not safe for concurrent use.
type ViewState struct {
	pageSize int
	query    models.RosterQuery
}

// NewViewState returns state with default sort and one page revealed.
func NewViewState(pageSize int) *ViewState {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	s := &ViewState{pageSize: pageSize}
	s.Reset()
	return s
}

// Query returns a copy of the current state.
func (s *ViewState) Query() models.RosterQuery {
	return s.query
}

// PageSize returns the reveal step.
func (s *ViewState) PageSize() int {
	return s.pageSize
}

// SetCourse changes the course filter.
func (s *ViewState) SetCourse(course string) {
	if course == s.query.Course {
		return
	}
	s.query.Course = course
	s.query.Reveal = s.pageSize
}

// SetSearch changes the name search term.
func (s *ViewState) SetSearch(search string) {
	if search == s.query.Search {
		return
	}
	s.query.Search = search
	s.query.Reveal = s.pageSize
}

// SetSort sets key and direction explicitly.
func (s *ViewState) SetSort(key models.SortKey, dir models.SortDirection) {
	s.query.SortKey = key
	if dir != models.SortDesc {
		dir = models.SortAsc
	}
	s.query.SortDirection = dir
}

// ToggleSort flips the direction when key is already active, otherwise
// switches to key ascending.
func (s *ViewState) ToggleSort(key models.SortKey) {
	if key == s.query.SortKey {
		if s.query.SortDirection == models.SortAsc {
			s.query.SortDirection = models.SortDesc
		} else {
			s.query.SortDirection = models.SortAsc
		}
		return
	}
	s.query.SortKey = key
	s.query.SortDirection = models.SortAsc
}

// LoadMore reveals one more page.
func (s *ViewState) LoadMore() {
	s.query.Reveal += s.pageSize
}

// Reset restores defaults.
func (s *ViewState) Reset() {
	s.query = models.RosterQuery{
		SortKey:       models.SortByName,
		SortDirection: models.SortAsc,
		Reveal:        s.pageSize,
	}
}
