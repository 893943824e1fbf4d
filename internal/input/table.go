package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// Column names recognised in input tables.
const (
	ColumnAreaCode = "MSOA11CD"
	ColumnCases    = "cases"
)

const byteOrderMark = "\ufeff"

// ParseTable reads a CSV input table with a header row into ic. source names
// the table in error messages. Rows are inserted in file order so the
// duplicate policy of ic sees them as written.
func ParseTable(r io.Reader, source string, ic *domain.InitialConditions) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &domain.MalformedRowError{Source: source, Line: 1, Reason: "missing header row"}
	}
	if err != nil {
		return rowError(source, err)
	}

	codeIdx, casesIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, byteOrderMark))
		switch name {
		case ColumnAreaCode:
			codeIdx = i
		case ColumnCases:
			casesIdx = i
		}
	}
	if codeIdx < 0 {
		return &domain.MalformedRowError{
			Source: source,
			Line:   1,
			Column: ColumnAreaCode,
			Reason: "required column missing from header",
		}
	}

	firstSeen := make(map[domain.AreaCode]int)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return rowError(source, err)
		}
		line, _ := cr.FieldPos(codeIdx)

		code, err := domain.ParseAreaCode(strings.TrimSpace(record[codeIdx]))
		if err != nil {
			return &domain.MalformedRowError{Source: source, Line: line, Column: ColumnAreaCode, Reason: err.Error()}
		}

		cases := domain.DefaultCases
		if casesIdx >= 0 {
			if raw := strings.TrimSpace(record[casesIdx]); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return &domain.MalformedRowError{
						Source: source, Line: line, Column: ColumnCases,
						Reason: fmt.Sprintf("%q is not an integer", raw),
					}
				}
				if n < 0 {
					return &domain.MalformedRowError{
						Source: source, Line: line, Column: ColumnCases,
						Reason: fmt.Sprintf("case count must be non-negative, got %d", n),
					}
				}
				cases = n
			}
		}

		if err := ic.Insert(code, cases); err != nil {
			var dup *domain.DuplicateAreaError
			if errors.As(err, &dup) {
				return &domain.MalformedRowError{
					Source: source, Line: line, Column: ColumnAreaCode,
					Reason: fmt.Sprintf("duplicate area code %s (first seen on line %d)", code, firstSeen[code]),
				}
			}
			return &domain.MalformedRowError{Source: source, Line: line, Reason: err.Error()}
		}
		if _, ok := firstSeen[code]; !ok {
			firstSeen[code] = line
		}
	}
}

// rowError converts a csv.ParseError into a MalformedRowError.
func rowError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		column := ""
		if pe.Column > 0 {
			column = strconv.Itoa(pe.Column)
		}
		return &domain.MalformedRowError{Source: source, Line: pe.Line, Column: column, Reason: pe.Err.Error()}
	}
	return fmt.Errorf("%w: reading %s: %w", domain.ErrSourceUnavailable, source, err)
}
