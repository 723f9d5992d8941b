package validator

import (
	"encoding/json"
	"fmt"
	"fraud_screener/internal/domain"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// record carries the constraints that hold once every field has the right type.
type record struct {
	ID               string `json:"id" validate:"required"`
	HighValueTxCount int    `json:"high_value_tx_count" validate:"gte=0"`
}

// TransactionValidator builds domain.Transaction values from untyped field
// maps such as decoded JSON objects or spreadsheet rows.
type TransactionValidator struct {
	validate *validator.Validate
	location *time.Location
}

type Option func(*TransactionValidator)

// WithLocation sets the zone used for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(v *TransactionValidator) {
		if loc != nil {
			v.location = loc
		}
	}
}

func NewTransactionValidator(opts ...Option) *TransactionValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v := &TransactionValidator{
		validate: validate,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Parse returns a Transaction or a domain.ValidationErrors naming every
// offending field.
func (v *TransactionValidator) Parse(fields map[string]any) (domain.Transaction, error) {
	var (
		tx   domain.Transaction
		errs domain.ValidationErrors
	)

	fail := func(field string, kind domain.ValidationKind, format string, args ...any) {
		errs = append(errs, &domain.ValidationError{
			Field:   field,
			Kind:    kind,
			Message: fmt.Sprintf(format, args...),
		})
	}

	lookup := func(field string) (any, bool) {
		raw, ok := fields[field]
		if !ok || raw == nil {
			fail(field, domain.KindMissing, "field is required")
			return nil, false
		}
		return raw, true
	}

	str := func(field string, dst *string) bool {
		raw, ok := lookup(field)
		if !ok {
			return false
		}
		s, ok := raw.(string)
		if !ok {
			fail(field, domain.KindWrongType, "expected string, got %T", raw)
			return false
		}
		*dst = s
		return true
	}

	timestamp := func(field string, dst *time.Time) {
		raw, ok := lookup(field)
		if !ok {
			return
		}
		t, err := v.parseTime(raw)
		if err != nil {
			fail(field, domain.KindMalformedTimestamp, "%v", err)
			return
		}
		*dst = t
	}

	idOK := str(domain.FieldID, &tx.ID)

	if raw, ok := lookup(domain.FieldAmount); ok {
		amount, kind, err := parseDecimal(raw)
		if err != nil {
			fail(domain.FieldAmount, kind, "%v", err)
		} else {
			tx.Amount = amount
		}
	}

	str(domain.FieldPaymentChannel, &tx.PaymentChannel)
	str(domain.FieldDeviceType, &tx.DeviceType)
	timestamp(domain.FieldTransactionTime, &tx.TransactionTime)
	str(domain.FieldLocation, &tx.Location)

	countOK := false
	if raw, ok := lookup(domain.FieldHighValueTxCount); ok {
		count, kind, err := parseCount(raw)
		if err != nil {
			fail(domain.FieldHighValueTxCount, kind, "%v", err)
		} else {
			tx.HighValueTxCount = count
			countOK = true
		}
	}

	timestamp(domain.FieldAccountCreationDate, &tx.AccountCreationDate)

	if raw, ok := lookup(domain.FieldIsVerified); ok {
		verified, err := parseBool(raw)
		if err != nil {
			fail(domain.FieldIsVerified, domain.KindWrongType, "%v", err)
		} else {
			tx.IsVerified = verified
		}
	}

	rec := record{ID: tx.ID, HighValueTxCount: tx.HighValueTxCount}
	if err := v.validate.Struct(rec); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return domain.Transaction{}, fmt.Errorf("validate transaction: %w", err)
		}
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case domain.FieldID:
				if idOK {
					fail(domain.FieldID, domain.KindMissing, "must not be empty")
				}
			case domain.FieldHighValueTxCount:
				if countOK {
					fail(domain.FieldHighValueTxCount, domain.KindOutOfRange, "must be >= %s, got %d", fe.Param(), tx.HighValueTxCount)
				}
			}
		}
	}

	if len(errs) > 0 {
		return domain.Transaction{}, errs
	}
	return tx, nil
}

func (v *TransactionValidator) parseTime(raw any) (time.Time, error) {
	switch t := raw.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("zero timestamp")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty timestamp")
		}
		for _, layout := range timestampLayouts {
			var (
				parsed time.Time
				err    error
			)
			if layout == time.RFC3339Nano {
				parsed, err = time.Parse(layout, s)
			} else {
				parsed, err = time.ParseInLocation(layout, s, v.location)
			}
			if err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	default:
		return time.Time{}, fmt.Errorf("expected timestamp string, got %T", raw)
	}
}

func parseDecimal(raw any) (decimal.Decimal, domain.ValidationKind, error) {
	switch n := raw.(type) {
	case decimal.Decimal:
		return n, "", nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, domain.KindWrongType, fmt.Errorf("not a number: %q", n.String())
		}
		return d, "", nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, domain.KindOutOfRange, fmt.Errorf("must be finite")
		}
		return decimal.NewFromFloat(n), "", nil
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, domain.KindOutOfRange, fmt.Errorf("must be finite")
		}
		return decimal.NewFromFloat32(n), "", nil
	case int:
		return decimal.NewFromInt(int64(n)), "", nil
	case int64:
		return decimal.NewFromInt(n), "", nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, domain.KindWrongType, fmt.Errorf("not a finite number: %q", n)
		}
		return d, "", nil
	default:
		return decimal.Decimal{}, domain.KindWrongType, fmt.Errorf("expected number, got %T", raw)
	}
}

func parseCount(raw any) (int, domain.ValidationKind, error) {
	d, kind, err := parseDecimal(raw)
	if err != nil {
		return 0, kind, err
	}
	if !d.IsInteger() {
		return 0, domain.KindWrongType, fmt.Errorf("expected integer, got %s", d.String())
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return 0, domain.KindOutOfRange, fmt.Errorf("value %s out of range", d.String())
	}
	return int(d.IntPart()), "", nil
}

func parseBool(raw any) (bool, error) {
	switch b := raw.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %q", b)
		}
		return parsed, nil
	case json.Number, float64, int, int64:
		d, _, err := parseDecimal(raw)
		if err == nil {
			switch {
			case d.Equal(decimal.Zero):
				return false, nil
			case d.Equal(decimal.NewFromInt(1)):
				return true, nil
			}
		}
		return false, fmt.Errorf("expected boolean, got %v", raw)
	default:
		return false, fmt.Errorf("expected boolean, got %T", raw)
	}
}
