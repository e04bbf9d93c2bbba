package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker/internal/constants"
	"github.com/yukikurage/task-tracker/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Date-time layouts are tried before the date-only layout.
var (
	dueDateTimeLayouts = []string{
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	dueDateLayout = "2006-01-02"
)

// NormalizeCategory trims the input and falls back to the default category.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return constants.DefaultCategory
	}
	return category
}

// NormalizePriority maps any spelling of Low/Medium/High onto the stored
// value; anything else becomes Medium.
func NormalizePriority(priority string) models.TaskPriority {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "low":
		return models.PriorityLow
	case "high":
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

// ParseDueDate parses a due date on a best-effort basis. Unparseable input
// yields nil rather than an error so a bad date never blocks a save.
// Literals without a zone are read as UTC.
func ParseDueDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range dueDateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}

	if t, err := time.Parse(dueDateLayout, value); err == nil {
		return &t
	}

	return nil
}

// ValidUsername reports whether username consists only of lowercase
// letters, digits and underscores.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
