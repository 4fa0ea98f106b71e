// Package dimension implements the monthly six-category profile store.
// A person's month is only ever written as a whole: six rows, one per
// category, with missing submissions materialized as the sentinel detail.
package dimension

import "errors"

// Category is one of the six fixed profile dimensions.
type Category string

const (
	CategoryIdeology Category = "ideology"
	CategoryStudy    Category = "study"
	CategoryWork     Category = "work"
	CategoryStyle    Category = "style"
	CategoryHealth   Category = "health"
	CategoryFamily   Category = "family"
)

// SensitiveCategory is the single category masked for unprivileged viewers.
const SensitiveCategory = CategoryFamily

const (
	// SentinelDetail marks a month/category with no submission.
	SentinelDetail = "无"
	// MaskedDetail replaces the sensitive category for unprivileged viewers.
	MaskedDetail = "***"
)

// Categories returns the six categories in catalog order.
func Categories() []Category {
	return []Category{
		CategoryIdeology,
		CategoryStudy,
		CategoryWork,
		CategoryStyle,
		CategoryHealth,
		CategoryFamily,
	}
}

// CategoryLabels maps categories to their display labels.
func CategoryLabels() map[Category]string {
	return map[Category]string{
		CategoryIdeology: "思想",
		CategoryStudy:    "学习",
		CategoryWork:     "工作",
		CategoryStyle:    "作风",
		CategoryHealth:   "身心",
		CategoryFamily:   "家庭",
	}
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{})
	for _, c := range Categories() {
		set[c] = struct{}{}
	}
	return set
}()

// IsKnownCategory reports whether the category is one of the fixed six.
func IsKnownCategory(c Category) bool {
	_, ok := categorySet[c]
	return ok
}

// Record is one stored (person, category, month) detail.
type Record struct {
	PersonID int64    `json:"personId"`
	Category Category `json:"category"`
	Month    MonthKey `json:"month"`
	Detail   string   `json:"detail"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("dimension: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("dimension: invalid input")
)
