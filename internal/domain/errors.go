package domain

import (
	"fmt"
	"strings"
)

type ValidationKind string

const (
	KindMissing            ValidationKind = "missing"
	KindWrongType          ValidationKind = "wrong_type"
	KindMalformedTimestamp ValidationKind = "malformed_timestamp"
	KindOutOfRange         ValidationKind = "out_of_range"
)

// ValidationError names one offending transaction field. Row is the 1-based
// data row for tabular input and zero otherwise.
type ValidationError struct {
	Field   string         `json:"field"`
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message"`
	Row     int            `json:"row,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: field %q: %s: %s", e.Row, e.Field, e.Kind, e.Message)
	}
	return fmt.Sprintf("field %q: %s: %s", e.Field, e.Kind, e.Message)
}

type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// AtRow returns a copy with every error tagged with the given data row.
func (errs ValidationErrors) AtRow(row int) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for i, e := range errs {
		c := *e
		c.Row = row
		out[i] = &c
	}
	return out
}

type UnsupportedFormatError struct {
	Name string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s: upload a CSV or XLSX file", e.Ext, e.Name)
}
