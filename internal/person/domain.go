package person

import (
	"errors"
	"time"
)

// Person is a personnel record. BirthDate and Phone are sensitive fields
// and leave the system only through the disclosure filter.
type Person struct {
	ID         int64
	Name       string
	Title      string
	Department string
	Focus      string
	Bio        string
	BirthDate  string // YYYY-MM-DD
	Phone      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("person: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("person: invalid input")
	// ErrDuplicate indicates a name collision.
	ErrDuplicate = errors.New("person: duplicate name")
)
