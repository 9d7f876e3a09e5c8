package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/repository"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
)

type countingSource struct {
	students  []models.Student
	calls     int
	err       error
	afterList func()
}

func (s *countingSource) List(context.Context) ([]models.Student, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := append([]models.Student(nil), s.students...)
	if s.afterList != nil {
		s.afterList()
	}
	return out, nil
}

func rosterFixture(n int) []models.Student {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Student, n)
	for i := range out {
		out[i] = models.Student{
			ID:     fmt.Sprintf("s%03d", i),
			Name:   fmt.Sprintf("Student %03d", i),
			Email:  fmt.Sprintf("s%03d@school.edu", i),
			Course: models.AvailableCourses[i%len(models.AvailableCourses)],
			Joined: base.Add(time.Duration(i) * time.Hour),
			Age:    18 + i%8,
		}
	}
	return out
}

func newRosterServiceForTest(source rosterSource, cache *CacheService) *RosterService {
	return NewRosterService(source, cache, NewMetricsService(), RosterConfig{PageSize: 12}, zap.NewNop())
}

func TestRosterServiceViewDefaults(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(50)}, nil)

	view, hit, err := svc.View(context.Background(), models.RosterQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, view.Students, 12)
	assert.True(t, view.HasMore)
	assert.Equal(t, 50, view.Total)
	assert.Equal(t, 50, view.RosterSize)
	assert.Equal(t, models.SortByName, view.Query.SortKey)
	assert.Equal(t, models.SortAsc, view.Query.SortDirection)
	assert.Equal(t, "Student 000", view.Students[0].Name)

	total := 0
	for _, c := range view.CourseCounts {
		total += c.Count
	}
	assert.Equal(t, 50, total)
}

func TestRosterServiceViewFiltersAndRevealsAll(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(50)}, nil)

	view, _, err := svc.View(context.Background(), models.RosterQuery{Course: "Physics", Reveal: 100})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Total)
	assert.Len(t, view.Students, 5)
	assert.False(t, view.HasMore)
	for _, s := range view.Students {
		assert.Equal(t, "Physics", s.Course)
	}
}

func TestRosterServiceViewUsesCache(t *testing.T) {
	source := &countingSource{students: rosterFixture(20)}
	cacheRepo := &recordingCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := newRosterServiceForTest(source, cache)
	q := models.RosterQuery{SortKey: models.SortByAge, SortDirection: models.SortDesc}

	first, hit, err := svc.View(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.View(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Students[0].ID, second.Students[0].ID)

	require.NoError(t, cache.InvalidateRoster(context.Background()))
	_, hit, err = svc.View(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.calls)
}

func TestRosterServiceViewBuiltBeforeMutationIsNotServed(t *testing.T) {
	source := &countingSource{students: rosterFixture(3)}
	cacheRepo := &recordingCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := newRosterServiceForTest(source, cache)
	ctx := context.Background()

	source.afterList = func() {
		source.afterList = nil
		source.students = source.students[:2]
		require.NoError(t, cache.InvalidateRoster(ctx))
	}
	stale, hit, err := svc.View(ctx, models.RosterQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, stale.Total)

	fresh, hit, err := svc.View(ctx, models.RosterQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, fresh.Total)
	assert.Equal(t, 2, source.calls)

	cached, hit, err := svc.View(ctx, models.RosterQuery{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, cached.Total)
}

func TestRosterServiceViewIgnoresCacheFailure(t *testing.T) {
	source := &countingSource{students: rosterFixture(3)}
	cache := NewCacheService(&recordingCacheRepo{getErr: errors.New("redis down")}, nil, time.Minute, zap.NewNop(), true)
	svc := newRosterServiceForTest(source, cache)

	view, hit, err := svc.View(context.Background(), models.RosterQuery{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, view.Total)
}

func TestRosterServiceViewSourceFailure(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{err: errors.New("boom")}, nil)

	_, _, err := svc.View(context.Background(), models.RosterQuery{})
	assertCode(t, err, appErrors.ErrInternal.Code)
}

func TestRosterServiceSessionStateLifecycle(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(50)}, nil)
	ctx := context.Background()

	view, err := svc.SessionView(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, view.Students, 12)

	view, err = svc.LoadMore(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, view.Students, 24)

	sortKey := models.SortByJoined
	view, err = svc.UpdateState(ctx, "u1", RosterStateUpdate{SortKey: &sortKey})
	require.NoError(t, err)
	assert.Equal(t, 24, view.Query.Reveal)
	assert.Equal(t, models.SortByJoined, view.Query.SortKey)

	course := "Biology"
	view, err = svc.UpdateState(ctx, "u1", RosterStateUpdate{Course: &course})
	require.NoError(t, err)
	assert.Equal(t, 12, view.Query.Reveal)
	assert.Equal(t, 5, view.Total)

	other, err := svc.SessionView(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "", other.Query.Course)
	assert.Equal(t, 50, other.Total)

	view, err = svc.ResetState(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RosterQuery{SortKey: models.SortByName, SortDirection: models.SortAsc, Reveal: 12}, view.Query)
}

func TestRosterServiceHeldStateNeedsSessionKey(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(5)}, nil)
	ctx := context.Background()

	course := "Physics"
	_, err := svc.UpdateState(ctx, "", RosterStateUpdate{Course: &course})
	assertCode(t, err, appErrors.ErrSessionRequired.Code)
	_, err = svc.SessionView(ctx, "")
	assertCode(t, err, appErrors.ErrSessionRequired.Code)
	_, err = svc.LoadMore(ctx, "")
	assertCode(t, err, appErrors.ErrSessionRequired.Code)
	_, err = svc.ResetState(ctx, "")
	assertCode(t, err, appErrors.ErrSessionRequired.Code)
	assert.Empty(t, svc.states)
}

func TestRosterServiceToggleSort(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(5)}, nil)
	ctx := context.Background()

	view, err := svc.UpdateState(ctx, "u1", RosterStateUpdate{Toggle: models.SortByName})
	require.NoError(t, err)
	assert.Equal(t, models.SortDesc, view.Query.SortDirection)
	assert.Equal(t, "Student 004", view.Students[0].Name)

	view, err = svc.UpdateState(ctx, "u1", RosterStateUpdate{Toggle: models.SortByAge})
	require.NoError(t, err)
	assert.Equal(t, models.SortByAge, view.Query.SortKey)
	assert.Equal(t, models.SortAsc, view.Query.SortDirection)
}

func TestRosterServiceUpdateStateRejectsUnknownSort(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{}, nil)
	bad := models.SortKey("height")

	_, err := svc.UpdateState(context.Background(), "u1", RosterStateUpdate{SortKey: &bad})
	assertCode(t, err, appErrors.ErrValidation.Code)

	dir := models.SortDirection("sideways")
	_, err = svc.UpdateState(context.Background(), "u1", RosterStateUpdate{SortDirection: &dir})
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestRosterServiceExportCSVIgnoresReveal(t *testing.T) {
	svc := newRosterServiceForTest(&countingSource{students: rosterFixture(30)}, nil)

	out, err := svc.ExportCSV(context.Background(), models.RosterQuery{Reveal: 1, SortDirection: models.SortDesc})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 31)
	assert.Equal(t, []string{"id", "name", "email", "course", "joined", "age", "profileImage"}, records[0])
	assert.Equal(t, "Student 029", records[1][1])
	assert.Equal(t, "2024-01-02T05:00:00.000Z", records[1][4])
	assert.Equal(t, "", records[1][6])
	assert.Equal(t, 30, bytes.Count(out, []byte("\r\n")))
	assert.False(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestRosterServiceExportPDF(t *testing.T) {
	students := repository.SeedStudents(15, 7, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := newRosterServiceForTest(&countingSource{students: students}, nil)

	out, err := svc.ExportPDF(context.Background(), models.RosterQuery{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseSortKeyAndDirection(t *testing.T) {
	key, err := ParseSortKey(" Joined ")
	require.NoError(t, err)
	assert.Equal(t, models.SortByJoined, key)

	key, err = ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, models.SortByName, key)

	_, err = ParseSortKey("height")
	assertCode(t, err, appErrors.ErrValidation.Code)

	dir, err := ParseSortDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, models.SortDesc, dir)

	_, err = ParseSortDirection("up")
	assertCode(t, err, appErrors.ErrValidation.Code)
}
