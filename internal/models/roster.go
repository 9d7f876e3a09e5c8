package models

// SortKey names the field the roster is ordered by.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByCourse SortKey = "course"
	SortByJoined SortKey = "joined"
	SortByAge    SortKey = "age"
)

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// RosterQuery is the caller-owned UI state the roster view is derived from.
type RosterQuery struct {
	Course        string        `json:"course"`
	Search        string        `json:"search"`
	SortKey       SortKey       `json:"sortKey"`
	SortDirection SortDirection `json:"sortDirection"`
	Reveal        int           `json:"reveal"`
}

// CourseCount is the number of students enrolled in one course.
type CourseCount struct {
	Course string `json:"course"`
	Count  int    `json:"count"`
}

// AgeStats summarises the known ages on the roster.
type AgeStats struct {
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
}

// RosterView is what the presentation layer renders.
type RosterView struct {
	Students     []Student     `json:"students"`
	HasMore      bool          `json:"hasMore"`
	Total        int           `json:"total"`
	RosterSize   int           `json:"rosterSize"`
	CourseCounts []CourseCount `json:"courseCounts"`
	AgeStats     AgeStats      `json:"ageStats"`
	Query        RosterQuery   `json:"query"`
}
