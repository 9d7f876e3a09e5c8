package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/strack-api/internal/models"
)

var studentEmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// NewValidator returns a validator with the roster's custom tags registered:
// "course" accepts AvailableCourses and "studentemail" the loose address form
// the dashboard accepts.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("course", func(fl validator.FieldLevel) bool {
		return models.IsKnownCourse(fl.Field().String())
	})
	_ = v.RegisterValidation("studentemail", func(fl validator.FieldLevel) bool {
		return studentEmailPattern.MatchString(fl.Field().String())
	})
	return v
}
