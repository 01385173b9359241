package utils

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, collapses every run of characters outside
// [a-z0-9] into a single hyphen and trims hyphens from both ends.
func Slugify(title string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// RoundToTenth rounds half away from zero to one decimal place.
func RoundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func AverageScore(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return RoundToTenth(float64(sum) / float64(len(values)))
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// IsAllowedEmail does a case-insensitive membership check against an
// allow-list.
func IsAllowedEmail(email string, allowList []string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, allowed := range allowList {
		if strings.EqualFold(email, strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// ValidationMessage turns binding errors into a single readable message.
func ValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request data"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatValidationError(e))
	}
	return strings.Join(messages, "; ")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
