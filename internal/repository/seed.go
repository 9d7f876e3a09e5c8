package repository

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/strack-api/internal/models"
)

var (
	seedFirstNames = []string{"Amelia", "Bilal", "Chen", "Dara", "Elif", "Farah", "Gabriel", "Hana", "Ibrahim", "Julia", "Kenji", "Lena", "Mateo", "Nadia", "Oscar", "Priya", "Quinn", "Rafael", "Sofia", "Tariq"}
	seedLastNames  = []string{"Anderson", "Budi", "Castillo", "Dewi", "Evans", "Fischer", "Garcia", "Hartono", "Ito", "Jensen", "Kowalski", "Lestari", "Morales", "Nguyen", "Okafor", "Putri", "Rossi", "Santoso", "Tanaka", "Wijaya"}
)

// SeedStudents generates n synthetic students. The same seed and now yield
// the same roster. Courses rotate through AvailableCourses, joined dates fall
// within the four years before now and ages range 18 to 25.
func SeedStudents(n int, seed int64, now time.Time) []models.Student {
	if n <= 0 {
		return []models.Student{}
	}
	rng := rand.New(rand.NewSource(seed))
	idSource := rand.New(rand.NewSource(seed))
	window := int64(4 * 365 * 24 * time.Hour)

	students := make([]models.Student, 0, n)
	for i := 0; i < n; i++ {
		first := seedFirstNames[rng.Intn(len(seedFirstNames))]
		last := seedLastNames[rng.Intn(len(seedLastNames))]
		id, err := uuid.NewRandomFromReader(idSource)
		if err != nil {
			id = uuid.New()
		}
		students = append(students, models.Student{
			ID:           id.String(),
			Name:         first + " " + last,
			Email:        fmt.Sprintf("%s.%s%d@school.edu", strings.ToLower(first), strings.ToLower(last), i),
			Course:       models.AvailableCourses[i%len(models.AvailableCourses)],
			Joined:       now.Add(-time.Duration(rng.Int63n(window))).UTC().Truncate(time.Millisecond),
			Age:          18 + rng.Intn(8),
			ProfileImage: fmt.Sprintf("https://avatars.githubusercontent.com/u/%d", 1000+rng.Intn(90000)),
		})
	}
	return students
}

type seedTarget interface {
	List(ctx context.Context) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

// SeedIfEmpty inserts students when the store holds none and reports how many
// were written. A non-empty store is left untouched.
func SeedIfEmpty(ctx context.Context, repo seedTarget, students []models.Student) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range students {
		if err := repo.Create(ctx, &students[i]); err != nil {
			return i, fmt.Errorf("seed student %d: %w", i, err)
		}
	}
	return len(students), nil
}
