package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/strack-api/internal/models"
	appErrors "github.com/noah-isme/strack-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for adding students. Age zero means not provided.
type CreateStudentRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,studentemail"`
	Course       string `json:"course" validate:"required,course"`
	Age          int    `json:"age" validate:"omitempty,min=16,max=100"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

// UpdateStudentRequest holds payload for editing students. Age is mandatory on edit.
type UpdateStudentRequest struct {
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"required,studentemail"`
	Course       string    `json:"course" validate:"required,course"`
	Age          int       `json:"age" validate:"required,min=16,max=100"`
	ProfileImage string    `json:"profileImage" validate:"omitempty,url"`
	Joined       time.Time `json:"joined"`
}

// StudentService handles roster mutations on behalf of the caller.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// List returns a snapshot of the roster.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to load student")
	}
	return student, nil
}

// Create adds a student to the roster.
func (s *StudentService) Create(ctx context.Context, perms models.Permissions, req CreateStudentRequest) (*models.Student, error) {
	if !perms.CanAdd {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "sign in to add students")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Course:       req.Course,
		Joined:       s.now().UTC(),
		Age:          req.Age,
		ProfileImage: req.ProfileImage,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.afterMutation(ctx, "create", student.ID)
	return student, nil
}

// Update edits an existing student. ID and, unless supplied, joined date are kept.
func (s *StudentService) Update(ctx context.Context, perms models.Permissions, id string, req UpdateStudentRequest) (*models.Student, error) {
	if !perms.CanEdit {
		return nil, appErrors.Clone(appErrors.ErrAdminModeRequired, "admin mode required to edit students")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to load student")
	}
	student := *existing
	student.Name = req.Name
	student.Email = req.Email
	student.Course = req.Course
	student.Age = req.Age
	student.ProfileImage = req.ProfileImage
	if !req.Joined.IsZero() {
		student.Joined = req.Joined.UTC()
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, notFoundOr(err, "failed to update student")
	}
	s.afterMutation(ctx, "update", student.ID)
	return &student, nil
}

// Delete removes a student from the roster.
func (s *StudentService) Delete(ctx context.Context, perms models.Permissions, id string) error {
	if !perms.CanDelete {
		return appErrors.Clone(appErrors.ErrAdminModeRequired, "admin mode required to delete students")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "failed to delete student")
	}
	s.afterMutation(ctx, "delete", id)
	return nil
}

func (s *StudentService) afterMutation(ctx context.Context, op, id string) {
	s.metrics.ObserveMutation(op)
	if err := s.cache.InvalidateRoster(ctx); err != nil {
		s.logger.Warn("roster cache not invalidated", zap.String("op", op), zap.Error(err))
	}
	s.logger.Info("student mutated", zap.String("op", op), zap.String("student_id", id))
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrStudentNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
