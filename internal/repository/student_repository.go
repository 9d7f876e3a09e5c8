package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/strack-api/internal/models"
)

const studentColumns = "id, name, email, course, joined, age, profile_image"

// seq is the insertion order List returns.
const studentSchema = `CREATE TABLE IF NOT EXISTS students (
    seq %[2]s,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    course TEXT NOT NULL,
    joined %[1]s NOT NULL,
    age INTEGER NOT NULL DEFAULT 0,
    profile_image TEXT NOT NULL DEFAULT '',
    created_at %[1]s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// StudentRepository manages persistence for student records in PostgreSQL
// or SQLite. Queries are written with ? placeholders and rebound per driver.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Migrate creates the students table when absent.
func (r *StudentRepository) Migrate(ctx context.Context) error {
	// go-sqlite3 only scans DATETIME-declared columns into time.Time.
	timestampType, seqType := "TIMESTAMPTZ", "BIGSERIAL PRIMARY KEY"
	if r.db.DriverName() == "sqlite3" {
		timestampType, seqType = "DATETIME", "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(studentSchema, timestampType, seqType)); err != nil {
		return fmt.Errorf("migrate students: %w", err)
	}
	return nil
}

// List returns the roster in insertion order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY seq ASC", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM students WHERE id = ?", studentColumns))
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Joined.IsZero() {
		student.Joined = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, name, email, course, joined, age, profile_image)
        VALUES (:id, :name, :email, :course, :joined, :age, :profile_image)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET name = :name, email = :email, course = :course, joined = :joined, age = :age, profile_image = :profile_image WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
