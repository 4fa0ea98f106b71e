package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/talentvault/talentvault/internal/dimension"
)

// Header aliases. Files arrive with either English or Chinese headers.
var headerAliases = map[string]string{
	"name": "name", "姓名": "name",
	"department": "department", "部门": "department",
	"title": "title", "职务": "title",
	"focus": "focus", "方向": "focus",
	"month": "month", "月份": "month",
	"ideology": "ideology", "思想": "ideology",
	"study": "study", "学习": "study",
	"work": "work", "工作": "work",
	"style": "style", "作风": "style",
	"health": "health", "身心": "health",
	"family": "family", "家庭": "family",
}

// NormalizeName folds full-width forms, applies NFC and trims, so that
// spreadsheet cells match stored names byte-for-byte.
func NormalizeName(name string) string {
	return strings.TrimSpace(norm.NFC.String(width.Fold.String(name)))
}

func normalizeHeader(cell string) string {
	key := strings.ToLower(NormalizeName(cell))
	return headerAliases[key]
}

// ParseCSV reads header-indexed rows. Fully blank lines are dropped
// silently; they are not errors and never reach reconciliation.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		if key := normalizeHeader(cell); key != "" {
			columns[key] = i
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%w: missing name column", ErrValidation)
	}

	cell := func(record []string, key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrValidation, line+1, err)
		}
		line++
		blank := true
		for _, c := range record {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		row := Row{
			Line:       line,
			Name:       NormalizeName(cell(record, "name")),
			Department: cell(record, "department"),
			Title:      cell(record, "title"),
			Focus:      cell(record, "focus"),
			Month:      cell(record, "month"),
			Details:    make(map[dimension.Category]string),
		}
		for _, category := range dimension.Categories() {
			if detail := cell(record, string(category)); detail != "" {
				row.Details[category] = detail
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
