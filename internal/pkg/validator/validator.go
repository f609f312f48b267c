package validator

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// IsValidDateRange checks both dates parse and from is not after to.
func IsValidDateRange(from, to string) bool {
	f, ok := IsValidDate(from)
	if !ok {
		return false
	}
	t, ok := IsValidDate(to)
	if !ok {
		return false
	}
	return !f.After(t)
}

func IsInSlice(value string, slice []string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}

// Worker names are free text but may not contain the legacy crew separator.
var workerNameRegex = regexp.MustCompile(`^[^+\r\n\t]+$`)

func IsValidWorkerName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return false
	}
	return workerNameRegex.MatchString(name)
}

// IsNonNegative reports whether a number is a usable hour budget.
func IsNonNegative(f float64) bool {
	return !math.IsNaN(f) && f >= 0
}
