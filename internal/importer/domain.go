// Package importer implements the two-phase spreadsheet reconciliation
// protocol: matched rows are updated immediately, unmatched names are
// deferred until the caller resubmits with creation explicitly allowed.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/talentvault/talentvault/internal/dimension"
)

// Row is one parsed spreadsheet line.
type Row struct {
	Line       int
	Name       string
	Department string
	Title      string
	Focus      string
	Month      string // raw cell, validated against YYYY-MM later
	Details    map[dimension.Category]string
}

// Result reports the outcome of an import run. BatchID only correlates
// log lines; the confirmation protocol itself is stateless.
type Result struct {
	BatchID      string   `json:"batchId"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	NeedsConfirm bool     `json:"needsConfirm,omitempty"`
	PendingNames []string `json:"pendingNames,omitempty"`
}

// ErrValidation indicates malformed import input.
var ErrValidation = errors.New("importer: invalid input")

// RowError pinpoints one violation in the uploaded file.
type RowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found so the caller can fix the
// whole file at once. Nothing is committed when it is returned.
type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, row := range e.Rows {
		parts = append(parts, fmt.Sprintf("line %d: %s %s", row.Line, row.Field, row.Message))
	}
	return "importer: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
