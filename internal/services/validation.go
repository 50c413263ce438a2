package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/BradenHooton/frontdesk/internal/models"
)

var (
	nameRegex       = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]{2,100}$`)
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex      = regexp.MustCompile(`^(?:\+34|0034|34)?[6789]\d{8}$`)
	postalCodeRegex = regexp.MustCompile(`^\d{5}$`)
)

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return models.ErrBadRequest }

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func ValidName(s string) bool { return nameRegex.MatchString(s) }

func ValidEmail(s string) bool { return emailRegex.MatchString(s) }

// ValidPhone accepts Spanish numbers with an optional +34/0034/34 prefix; spaces are ignored.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.ReplaceAll(s, " ", ""))
}
