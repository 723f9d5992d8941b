package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: FieldAmount, Kind: KindWrongType, Message: "not a number"},
		{Field: FieldLocation, Kind: KindMissing, Message: "field is required"},
	}

	assert.Equal(t,
		`validation failed: field "amount": wrong_type: not a number; field "location": missing: field is required`,
		errs.Error())

	wrapped := fmt.Errorf("parse: %w", errs)
	var first *ValidationError
	require.True(t, errors.As(wrapped, &first))
	assert.Equal(t, FieldAmount, first.Field)

	var all ValidationErrors
	require.True(t, errors.As(wrapped, &all))
	assert.Len(t, all, 2)
}

func TestValidationErrors_AtRow(t *testing.T) {
	errs := ValidationErrors{{Field: FieldID, Kind: KindMissing, Message: "field is required"}}

	tagged := errs.AtRow(3)

	assert.Equal(t, 0, errs[0].Row)
	assert.Equal(t, 3, tagged[0].Row)
	assert.Equal(t, `row 3: field "id": missing: field is required`, tagged[0].Error())
}

func TestUnsupportedFormatError(t *testing.T) {
	err := error(&UnsupportedFormatError{Name: "report.pdf", Ext: ".pdf"})

	var target *UnsupportedFormatError
	require.True(t, errors.As(fmt.Errorf("load: %w", err), &target))
	assert.Equal(t, ".pdf", target.Ext)
	assert.Contains(t, err.Error(), "upload a CSV or XLSX file")
}
