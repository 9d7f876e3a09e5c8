package models

import "time"

// AvailableCourses lists the course names offered by the institution.
var AvailableCourses = []string{
	"Computer Science",
	"Mathematics",
	"Physics",
	"Biology",
	"Chemistry",
	"Engineering",
	"Economics",
	"Psychology",
	"Art History",
	"Literature",
}

// IsKnownCourse reports whether course is one of AvailableCourses.
func IsKnownCourse(course string) bool {
	for _, c := range AvailableCourses {
		if c == course {
			return true
		}
	}
	return false
}

// Student represents a learner on the roster. Age zero means the age is unknown.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Course       string    `db:"course" json:"course"`
	Joined       time.Time `db:"joined" json:"joined"`
	Age          int       `db:"age" json:"age"`
	ProfileImage string    `db:"profile_image" json:"profileImage,omitempty"`
}
