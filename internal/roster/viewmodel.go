// Package roster derives what the dashboard shows from a roster snapshot and
// the caller's filter, search, sort and reveal state. Every function here is
// pure: inputs are never mutated and results are freshly allocated.
package roster

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/strack-api/internal/models"
)

// PageSize is the default reveal step.
const PageSize = 12

// Filter keeps students whose course equals course (when set) and whose name
// contains search, ignoring case. Input order is preserved.
func Filter(students []models.Student, course, search string) []models.Student {
	needle := strings.ToLower(search)
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if course != "" && s.Course != course {
			continue
		}
		if !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Sort returns a stably ordered copy of students.
//
// The joined key orders newest first before the direction is applied, so
// ascending yields newest-first and descending oldest-first. Age only orders
// pairs where both ages are known; any other pair compares equal.
func Sort(students []models.Student, key models.SortKey, dir models.SortDirection) []models.Student {
	out := make([]models.Student, len(students))
	copy(out, students)

	cmp := comparator(key)
	slices.SortStableFunc(out, func(a, b models.Student) int {
		c := cmp(a, b)
		if dir == models.SortDesc {
			return -c
		}
		return c
	})
	return out
}

func comparator(key models.SortKey) func(a, b models.Student) int {
	switch key {
	case models.SortByName:
		coll := collate.New(language.English)
		return func(a, b models.Student) int { return coll.CompareString(a.Name, b.Name) }
	case models.SortByCourse:
		coll := collate.New(language.English)
		return func(a, b models.Student) int { return coll.CompareString(a.Course, b.Course) }
	case models.SortByJoined:
		return func(a, b models.Student) int { return b.Joined.Compare(a.Joined) }
	case models.SortByAge:
		return func(a, b models.Student) int {
			if a.Age == 0 || b.Age == 0 {
				return 0
			}
			switch {
			case a.Age < b.Age:
				return -1
			case a.Age > b.Age:
				return 1
			}
			return 0
		}
	default:
		return func(models.Student, models.Student) int { return 0 }
	}
}

// Reveal returns the first count students and whether more remain.
func Reveal(sorted []models.Student, count int) ([]models.Student, bool) {
	if count < 0 {
		count = 0
	}
	n := count
	if n > len(sorted) {
		n = len(sorted)
	}
	visible := make([]models.Student, n)
	copy(visible, sorted[:n])
	return visible, count < len(sorted)
}

// CourseCounts tallies students per course in first-seen order.
func CourseCounts(students []models.Student) []models.CourseCount {
	index := make(map[string]int)
	counts := make([]models.CourseCount, 0)
	for _, s := range students {
		i, ok := index[s.Course]
		if !ok {
			index[s.Course] = len(counts)
			counts = append(counts, models.CourseCount{Course: s.Course, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// AgeSummary computes average, minimum and maximum over known ages.
func AgeSummary(students []models.Student) models.AgeStats {
	var stats models.AgeStats
	sum, n := 0, 0
	for _, s := range students {
		if s.Age == 0 {
			continue
		}
		if n == 0 || s.Age < stats.Min {
			stats.Min = s.Age
		}
		if n == 0 || s.Age > stats.Max {
			stats.Max = s.Age
		}
		sum += s.Age
		n++
	}
	if n > 0 {
		stats.Average = float64(sum) / float64(n)
	}
	return stats
}

// Normalize fills defaults: name ascending, one page revealed.
func Normalize(q models.RosterQuery, pageSize int) models.RosterQuery {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	if q.SortKey == "" {
		q.SortKey = models.SortByName
	}
	if q.SortDirection != models.SortDesc {
		q.SortDirection = models.SortAsc
	}
	if q.Reveal <= 0 {
		q.Reveal = pageSize
	}
	return q
}

// Arrange filters and sorts without truncating, the set exports operate on.
func Arrange(students []models.Student, q models.RosterQuery) []models.Student {
	return Sort(Filter(students, q.Course, q.Search), q.SortKey, q.SortDirection)
}

// Build derives the full view. Aggregates cover the whole roster, not the filtered set.
func Build(students []models.Student, q models.RosterQuery) models.RosterView {
	q = Normalize(q, PageSize)
	arranged := Arrange(students, q)
	visible, hasMore := Reveal(arranged, q.Reveal)
	return models.RosterView{
		Students:     visible,
		HasMore:      hasMore,
		Total:        len(arranged),
		RosterSize:   len(students),
		CourseCounts: CourseCounts(students),
		AgeStats:     AgeSummary(students),
		Query:        q,
	}
}
