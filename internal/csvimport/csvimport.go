// Package csvimport parses the two-column item_name,category format into item
// proposals. It never touches the store.
package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dukerupert/goshop/internal/model"
)

const (
	HeaderName     = "item_name"
	HeaderCategory = "category"

	// TemplateFilename is the suggested download name for Template.
	TemplateFilename = "everyday-items-template.csv"
)

var (
	ErrMissingHeader = errors.New(`CSV must have "item_name" and "category" columns`)
	ErrNoValidItems  = errors.New("no valid items found in CSV file")
)

// Proposal is a normalized row ready to be checked for duplicates and inserted.
type Proposal struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// RowError describes one rejected row. Row is the 1-indexed line number in the
// file, the header being row 1.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Reason)
}

// ParseError aggregates every row problem found in a file.
type ParseError struct {
	Rows []RowError
}

func (e *ParseError) Error() string {
	lines := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		lines[i] = r.String()
	}
	return "CSV parsing errors:\n" + strings.Join(lines, "\n")
}

// Template returns an empty file carrying only the header row.
func Template() string {
	return HeaderName + "," + HeaderCategory + "\n"
}

// Parse reads a whole CSV file. Either every data row is valid and the
// proposals are returned, or nothing is returned and the error lists every
// bad row.
func Parse(r io.Reader) ([]Proposal, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseString(string(data))
}

func ParseString(text string) ([]Proposal, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	if !hasHeader(lines[0]) {
		return nil, ErrMissingHeader
	}

	var proposals []Proposal
	var rowErrs []RowError
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		row := i + 1

		// The first field is always the name and the second the category,
		// whatever order the header lists them in.
		fields := SplitLine(line)
		if len(fields) < 2 {
			rowErrs = append(rowErrs, RowError{Row: row, Reason: "Missing required columns"})
			continue
		}

		name := strings.TrimSpace(fields[0])
		if name == "" {
			rowErrs = append(rowErrs, RowError{Row: row, Reason: "item_name cannot be empty"})
			continue
		}
		category := strings.TrimSpace(fields[1])
		if category == "" {
			category = model.DefaultCategory
		}
		proposals = append(proposals, Proposal{Name: name, Category: category})
	}

	if len(rowErrs) > 0 {
		return nil, &ParseError{Rows: rowErrs}
	}
	if len(proposals) == 0 {
		return nil, ErrNoValidItems
	}
	return proposals, nil
}

// hasHeader reports whether the header line mentions both column names,
// case-insensitively. It does not locate them.
func hasHeader(header string) bool {
	lower := strings.ToLower(strings.TrimSpace(header))
	return strings.Contains(lower, HeaderName) && strings.Contains(lower, HeaderCategory)
}

// SplitLine splits one line on commas. Double quotes toggle quoting, a doubled
// quote inside a quoted field yields a literal quote, and commas inside quotes
// are kept.
func SplitLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return append(fields, current.String())
}
