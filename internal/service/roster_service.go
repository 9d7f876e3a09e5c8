package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/roster"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
	"github.com/noah-isme/strack-api/pkg/export"
)

type rosterSource interface {
	List(ctx context.Context) ([]models.Student, error)
}

// RosterConfig tunes the roster service.
type RosterConfig struct {
	PageSize int
	CacheTTL time.Duration
}

// RosterStateUpdate changes server-held view state. Nil fields are left alone.
type RosterStateUpdate struct {
	Course        *string               `json:"course"`
	Search        *string               `json:"search"`
	SortKey       *models.SortKey       `json:"sortKey"`
	SortDirection *models.SortDirection `json:"sortDirection"`
	Toggle        models.SortKey        `json:"toggle"`
}

// RosterService serves roster views and exports over the current snapshot.
type RosterService struct {
	source  rosterSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     RosterConfig
	csv     *export.CSVExporter
	pdf     *export.PDFExporter

	mu     sync.Mutex
	states map[string]*roster.ViewState
}

// NewRosterService constructs a RosterService.
func NewRosterService(source rosterSource, cache *CacheService, metrics *MetricsService, cfg RosterConfig, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = roster.PageSize
	}
	pdf := export.NewPDFExporter()
	pdf.Widths = map[string]float64{"id": 2.4, "name": 1.6, "email": 2, "course": 1.3, "joined": 1.6, "age": 0.5, "profileImage": 2.2}
	return &RosterService{
		source:  source,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		csv:     roster.NewCSVExporter(),
		pdf:     pdf,
		states:  make(map[string]*roster.ViewState),
	}
}

// PageSize returns the configured reveal step.
func (s *RosterService) PageSize() int {
	return s.cfg.PageSize
}

// ParseSortKey validates a sort key, defaulting to name.
func ParseSortKey(raw string) (models.SortKey, error) {
	switch key := models.SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case "":
		return models.SortByName, nil
	case models.SortByName, models.SortByCourse, models.SortByJoined, models.SortByAge:
		return key, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "sort must be one of name, course, joined, age")
}

// ParseSortDirection validates a direction, defaulting to ascending.
func ParseSortDirection(raw string) (models.SortDirection, error) {
	switch dir := models.SortDirection(strings.ToLower(strings.TrimSpace(raw))); dir {
	case "":
		return models.SortAsc, nil
	case models.SortAsc, models.SortDesc:
		return dir, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc")
}

// View builds the roster view for a caller-supplied query. The bool reports a cache hit.
func (s *RosterService) View(ctx context.Context, q models.RosterQuery) (*models.RosterView, bool, error) {
	q = roster.Normalize(q, s.cfg.PageSize)

	generation, err := s.cache.RosterGeneration(ctx)
	cacheable := err == nil
	if err != nil {
		s.logger.Debug("roster cache unavailable", zap.Error(err))
	}
	key := RosterKey(generation, q)

	if cacheable {
		var cached models.RosterView
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Debug("roster cache unavailable", zap.Error(err))
		}
		if hit {
			s.metrics.ObserveRosterView(string(q.SortKey), cached.RosterSize)
			return &cached, true, nil
		}
	}

	students, err := s.snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	view := roster.Build(students, q)
	if cacheable {
		_ = s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	}
	s.metrics.ObserveRosterView(string(q.SortKey), view.RosterSize)
	return &view, false, nil
}

// SessionView builds the view from the state held for sessionKey.
func (s *RosterService) SessionView(ctx context.Context, sessionKey string) (*models.RosterView, error) {
	return s.heldView(ctx, sessionKey, nil)
}

// UpdateState applies update to the held state. Course and search changes reset the reveal count.
func (s *RosterService) UpdateState(ctx context.Context, sessionKey string, update RosterStateUpdate) (*models.RosterView, error) {
	if update.SortKey != nil {
		if _, err := ParseSortKey(string(*update.SortKey)); err != nil {
			return nil, err
		}
	}
	if update.Toggle != "" {
		if _, err := ParseSortKey(string(update.Toggle)); err != nil {
			return nil, err
		}
	}
	if update.SortDirection != nil {
		if _, err := ParseSortDirection(string(*update.SortDirection)); err != nil {
			return nil, err
		}
	}

	return s.heldView(ctx, sessionKey, func(state *roster.ViewState) {
		if update.Course != nil {
			state.SetCourse(*update.Course)
		}
		if update.Search != nil {
			state.SetSearch(strings.TrimSpace(*update.Search))
		}
		if update.SortKey != nil || update.SortDirection != nil {
			current := state.Query()
			key, dir := current.SortKey, current.SortDirection
			if update.SortKey != nil {
				key, _ = ParseSortKey(string(*update.SortKey))
			}
			if update.SortDirection != nil {
				dir, _ = ParseSortDirection(string(*update.SortDirection))
			}
			state.SetSort(key, dir)
		}
		if update.Toggle != "" {
			key, _ := ParseSortKey(string(update.Toggle))
			state.ToggleSort(key)
		}
	})
}

// LoadMore reveals one more page for sessionKey.
func (s *RosterService) LoadMore(ctx context.Context, sessionKey string) (*models.RosterView, error) {
	return s.heldView(ctx, sessionKey, (*roster.ViewState).LoadMore)
}

// ResetState restores default state for sessionKey.
func (s *RosterService) ResetState(ctx context.Context, sessionKey string) (*models.RosterView, error) {
	return s.heldView(ctx, sessionKey, (*roster.ViewState).Reset)
}

// ExportCSV renders the full filtered and sorted set, ignoring the reveal count.
func (s *RosterService) ExportCSV(ctx context.Context, q models.RosterQuery) ([]byte, error) {
	students, err := s.arranged(ctx, q)
	if err != nil {
		return nil, err
	}
	out, err := s.csv.Render(roster.Dataset(students))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "failed to render csv")
	}
	s.metrics.ObserveExport("csv")
	s.logger.Info("roster exported", zap.String("format", "csv"), zap.Int("rows", len(students)))
	return out, nil
}

// ExportPDF renders the same set as ExportCSV into a table.
func (s *RosterService) ExportPDF(ctx context.Context, q models.RosterQuery) ([]byte, error) {
	students, err := s.arranged(ctx, q)
	if err != nil {
		return nil, err
	}
	out, err := s.pdf.Render(roster.Dataset(students), "Students")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "failed to render pdf")
	}
	s.metrics.ObserveExport("pdf")
	s.logger.Info("roster exported", zap.String("format", "pdf"), zap.Int("rows", len(students)))
	return out, nil
}

func (s *RosterService) arranged(ctx context.Context, q models.RosterQuery) ([]models.Student, error) {
	students, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return roster.Arrange(students, roster.Normalize(q, s.cfg.PageSize)), nil
}

func (s *RosterService) snapshot(ctx context.Context) ([]models.Student, error) {
	students, err := s.source.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}

// heldView applies mutate to the state held for key and builds the resulting view.
// State is only held for signed-in sessions.
func (s *RosterService) heldView(ctx context.Context, key string, mutate func(*roster.ViewState)) (*models.RosterView, error) {
	if key == "" {
		return nil, appErrors.ErrSessionRequired
	}
	view, _, err := s.View(ctx, s.query(key, mutate))
	return view, err
}

// query applies mutate to the state for key under lock and returns the resulting query.
func (s *RosterService) query(key string, mutate func(*roster.ViewState)) models.RosterQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	if !ok {
		state = roster.NewViewState(s.cfg.PageSize)
		s.states[key] = state
	}
	if mutate != nil {
		mutate(state)
	}
	return state.Query()
}
