package ingest

import (
	"errors"
	"fmt"
	"fraud_screener/internal/domain"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Serial dates carry no zone; they are handed to the row parser as wall-clock
// text so they resolve in the same location as CSV timestamps.
const wallClockLayout = "2006-01-02 15:04:05.999999999"

// readXLSX returns the raw cell values of the first sheet. Date cells come
// back as serial numbers and are converted by cellValue.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func cellValue(format, field, cell string) any {
	if format != FormatXLSX {
		return cell
	}
	switch field {
	case domain.FieldTransactionTime, domain.FieldAccountCreationDate:
		serial, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return cell
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return cell
		}
		return t.Format(wallClockLayout)
	default:
		return cell
	}
}
