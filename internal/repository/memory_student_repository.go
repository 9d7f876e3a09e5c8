package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/strack-api/internal/models"
)

// MemoryStudentRepository keeps the roster in process memory, standing in for
// a remote backend. Roster order is insertion order.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students []models.Student
}

// NewMemoryStudentRepository constructs a repository holding a copy of seed.
func NewMemoryStudentRepository(seed []models.Student) *MemoryStudentRepository {
	students := make([]models.Student, len(seed))
	copy(students, seed)
	return &MemoryStudentRepository{students: students}
}

// List returns a snapshot of the roster.
func (r *MemoryStudentRepository) List(ctx context.Context) ([]models.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Student, len(r.students))
	copy(out, r.students)
	return out, nil
}

// FindByID fetches a student by ID.
func (r *MemoryStudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	student := r.students[i]
	return &student, nil
}

// Create appends a student to the roster.
func (r *MemoryStudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(student.ID) >= 0 {
		return fmt.Errorf("create student: duplicate id %s", student.ID)
	}
	r.students = append(r.students, *student)
	return nil
}

// Update replaces the record with the same ID in place.
func (r *MemoryStudentRepository) Update(ctx context.Context, student *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(student.ID)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.students[i] = *student
	return nil
}

// Delete removes a student from the roster.
func (r *MemoryStudentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return sql.ErrNoRows
	}
	r.students = append(r.students[:i:i], r.students[i+1:]...)
	return nil
}

func (r *MemoryStudentRepository) indexOf(id string) int {
	for i := range r.students {
		if r.students[i].ID == id {
			return i
		}
	}
	return -1
}
