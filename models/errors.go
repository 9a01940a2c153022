package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset means the source had no usable rows after loading.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrNoMatchingSource means none of the expected worksheets exist.
	ErrNoMatchingSource = errors.New("no matching source worksheet")
)

// ParseFailure records a field that could not be parsed. It never stops the
// pipeline; the field is stored as null instead.
type ParseFailure struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (p *ParseFailure) Error() string {
	return fmt.Sprintf("row %d: parse %s %q: %v", p.Row, p.Column, p.Value, p.Err)
}

func (p *ParseFailure) Unwrap() error {
	return p.Err
}
