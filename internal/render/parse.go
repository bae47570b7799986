package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errEmptyRow = errors.New("empty row")

// ParseError reports a row that could not be turned into samples. Field is
// the zero-based token position, or -1 when the row as a whole is unusable.
type ParseError struct {
	Row   string
	Field int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("parse row %q: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("parse row %q field %d: %v", e.Row, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRow strips surrounding whitespace, splits row on delim and parses the
// first fields tokens. A row with fewer tokens yields a shorter slice; extra
// tokens are never looked at.
func ParseRow(row string, delim rune, fields int) ([]float64, error) {
	trimmed := strings.TrimSpace(row)
	if trimmed == "" {
		return nil, &ParseError{Row: row, Field: -1, Err: errEmptyRow}
	}

	tokens := strings.SplitN(trimmed, string(delim), fields+1)
	if len(tokens) > fields {
		tokens = tokens[:fields]
	}

	values := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, &ParseError{Row: row, Field: i, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Row: row, Field: i, Err: fmt.Errorf("non-finite value %q", tok)}
		}
		values = append(values, v)
	}
	return values, nil
}
