package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/strack-api/internal/models"
	"github.com/noah-isme/strack-api/internal/roster"
	"github.com/noah-isme/strack-api/internal/service"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
	"github.com/noah-isme/strack-api/pkg/export"
	"github.com/noah-isme/strack-api/pkg/response"
)

type rosterService interface {
	PageSize() int
	View(ctx context.Context, q models.RosterQuery) (*models.RosterView, bool, error)
	SessionView(ctx context.Context, sessionKey string) (*models.RosterView, error)
	UpdateState(ctx context.Context, sessionKey string, update service.RosterStateUpdate) (*models.RosterView, error)
	LoadMore(ctx context.Context, sessionKey string) (*models.RosterView, error)
	ResetState(ctx context.Context, sessionKey string) (*models.RosterView, error)
	ExportCSV(ctx context.Context, q models.RosterQuery) ([]byte, error)
	ExportPDF(ctx context.Context, q models.RosterQuery) ([]byte, error)
}

// RosterHandler serves derived roster views and exports.
type RosterHandler struct {
	roster rosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(svc rosterService) *RosterHandler {
	return &RosterHandler{roster: svc}
}

// View godoc
// @Summary Roster view
// @Description Filtered, sorted and revealed roster with course counts. Sorting by joined ascending lists newest first.
// @Tags Roster
// @Produce json
// @Param course query string false "Exact course filter"
// @Param search query string false "Case-insensitive name search"
// @Param sort query string false "name, course, joined or age"
// @Param order query string false "asc or desc"
// @Param reveal query int false "Number of students to reveal"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /roster [get]
func (h *RosterHandler) View(c *gin.Context) {
	q, err := parseRosterQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.roster.View(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, view, map[string]interface{}{"cache_hit": hit})
}

// Export godoc
// @Summary Export roster
// @Description Download the whole filtered and sorted roster as students.csv or students.pdf
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param format path string true "export.csv or export.pdf"
// @Param course query string false "Exact course filter"
// @Param search query string false "Case-insensitive name search"
// @Param sort query string false "name, course, joined or age"
// @Param order query string false "asc or desc"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /roster/{format} [get]
func (h *RosterHandler) Export(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := parseRosterQuery(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		switch format {
		case "csv":
			body, err := h.roster.ExportCSV(c.Request.Context(), q)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.Attachment(c, roster.CSVFilename, export.CSVContentType, body)
		case "pdf":
			body, err := h.roster.ExportPDF(c.Request.Context(), q)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.Attachment(c, roster.PDFFilename, export.PDFContentType, body)
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		}
	}
}

// State godoc
// @Summary Held roster view
// @Description Roster view built from the state held for the signed-in caller
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Failure 401 {object} response.Envelope
// @Router /roster/state [get]
func (h *RosterHandler) State(c *gin.Context) {
	view, err := h.roster.SessionView(c.Request.Context(), sessionFromContext(c).Key())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, view, nil)
}

// UpdateState godoc
// @Summary Change held roster state
// @Description Course or search changes reset the reveal count to one page; sort changes keep it
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.RosterStateUpdate true "State changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Failure 401 {object} response.Envelope
// @Router /roster/state [put]
func (h *RosterHandler) UpdateState(c *gin.Context) {
	var update service.RosterStateUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid state payload"))
		return
	}
	view, err := h.roster.UpdateState(c.Request.Context(), sessionFromContext(c).Key(), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, view, nil)
}

// LoadMore godoc
// @Summary Reveal next page
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Failure 401 {object} response.Envelope
// @Router /roster/state/more [post]
func (h *RosterHandler) LoadMore(c *gin.Context) {
	view, err := h.roster.LoadMore(c.Request.Context(), sessionFromContext(c).Key())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, view, nil)
}

// ResetState godoc
// @Summary Reset held roster state
// @Tags Roster
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Failure 401 {object} response.Envelope
// @Router /roster/state [delete]
func (h *RosterHandler) ResetState(c *gin.Context) {
	view, err := h.roster.ResetState(c.Request.Context(), sessionFromContext(c).Key())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, view, nil)
}

func (h *RosterHandler) respond(c *gin.Context, view *models.RosterView, meta map[string]interface{}) {
	page := &response.Pagination{
		Revealed: len(view.Students),
		Total:    view.Total,
		HasMore:  view.HasMore,
	}
	if view.HasMore {
		page.Next = view.Query.Reveal + h.roster.PageSize()
	}
	response.JSON(c, http.StatusOK, view, page, meta)
}

func parseRosterQuery(c *gin.Context) (models.RosterQuery, error) {
	key, err := service.ParseSortKey(c.Query("sort"))
	if err != nil {
		return models.RosterQuery{}, err
	}
	dir, err := service.ParseSortDirection(c.Query("order"))
	if err != nil {
		return models.RosterQuery{}, err
	}
	q := models.RosterQuery{
		Course:        c.Query("course"),
		Search:        strings.TrimSpace(c.Query("search")),
		SortKey:       key,
		SortDirection: dir,
	}
	if raw := c.Query("reveal"); raw != "" {
		reveal, err := strconv.Atoi(raw)
		if err != nil || reveal < 0 {
			return models.RosterQuery{}, appErrors.Clone(appErrors.ErrValidation, "reveal must be a non-negative integer")
		}
		q.Reveal = reveal
	}
	return q, nil
}
