// Package ingest turns uploaded transaction tables into validated
// transactions. CSV files and XLSX workbooks are supported; each needs a
// header row naming the transaction fields.
package ingest

import (
	"errors"
	"fmt"
	"fraud_screener/internal/domain"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	FormatCSV  = ".csv"
	FormatXLSX = ".xlsx"
)

var ErrEmptyTable = errors.New("table has no header row")

// RowParser builds a Transaction from one row keyed by column name.
// *validator.TransactionValidator satisfies it.
type RowParser interface {
	Parse(fields map[string]any) (domain.Transaction, error)
}

type Loader struct {
	parser RowParser
	logger *slog.Logger
}

func NewLoader(parser RowParser, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{parser: parser, logger: logger}
}

// LoadFile reads a table from disk, picking the format from the extension.
func (l *Loader) LoadFile(path string) ([]domain.Transaction, error) {
	if _, err := Format(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(filepath.Base(path), f)
}

// Load reads a table named name from r. An unrecognized extension yields
// *domain.UnsupportedFormatError and no transactions.
func (l *Loader) Load(name string, r io.Reader) ([]domain.Transaction, error) {
	format, err := Format(name)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	txs, err := l.convert(format, rows)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Transaction table loaded",
		slog.String("name", name),
		slog.String("format", strings.TrimPrefix(format, ".")),
		slog.Int("transactions", len(txs)))

	return txs, nil
}

// Format returns the normalized extension of name or an
// *domain.UnsupportedFormatError.
func Format(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case FormatCSV, FormatXLSX:
		return ext, nil
	default:
		return "", &domain.UnsupportedFormatError{Name: name, Ext: ext}
	}
}

func (l *Loader) convert(format string, rows [][]string) ([]domain.Transaction, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	var missing domain.ValidationErrors
	for _, field := range domain.TransactionFields {
		if _, ok := header[field]; !ok {
			missing = append(missing, &domain.ValidationError{
				Field:   field,
				Kind:    domain.KindMissing,
				Message: "column not found in header",
			})
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	txs := make([]domain.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}

		fields := make(map[string]any, len(domain.TransactionFields))
		for _, field := range domain.TransactionFields {
			col := header[field]
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			fields[field] = cellValue(format, field, cell)
		}

		tx, err := l.parser.Parse(fields)
		if err != nil {
			var verrs domain.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, verrs.AtRow(i + 1)
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
