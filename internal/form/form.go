// Package form turns loosely typed input (text fields, request bodies, CSV
// cells) into well-formed values before they reach the trade rules.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		if name == "" {
			return f.Name
		}

		return name
	})

	return v
}

// FieldErrors maps a field name to the rule it failed. It unwraps to
// trade.ErrValidation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}

	return "invalid fields: " + strings.Join(parts, ", ")
}

func (e FieldErrors) Unwrap() error {
	return trade.ErrValidation
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", trade.ErrValidation, err)
	}

	out := make(FieldErrors, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}

	return out
}

var amountReplacer = strings.NewReplacer(",", "", " ", "", " ", "", "₹", "", "$", "", "€", "", "£", "")

// ParseAmount parses a user-typed amount such as "1,20,000.50" or "₹ 4500".
// Thousands separators and currency symbols are ignored; an empty string is 0.
func ParseAmount(s string) (float64, error) {
	clean := amountReplacer.Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, trade.ErrValidation)
	}

	return d.InexactFloat64(), nil
}

// Amount is ParseAmount for inputs where a bad value should read as 0.
func Amount(s string) float64 {
	v, err := ParseAmount(s)
	if err != nil {
		return 0
	}

	return v
}

// FormatAmount renders v with two decimals, the way amounts are typed back in.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. An empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, trade.ErrValidation)
	}

	return t, nil
}
