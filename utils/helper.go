package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ProcessValidationErrors flattens validator errors into a field -> message map
// so handlers can surface them per-field.
func ProcessValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			switch fieldErr.Tag() {
			case "required":
				errorsMap[fieldErr.Field()] = "is required"
			case "email":
				errorsMap[fieldErr.Field()] = "is not a valid email"
			default:
				errorsMap[fieldErr.Field()] = "is invalid"
			}
		}
	}
	return errorsMap
}

var dateFilterLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
}

// ParseDateFilter parses a ledger date filter. Accepts ISO dates or the
// DD/MM/YYYY form used by the frontend; anything unparseable means "no filter".
func ParseDateFilter(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFilterLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeDecimalInput sanitizes comma decimal separators ("100,50" -> "100.50")
// before parsing. Quantity/price/amount fields arrive this way from es-AR locales.
func NormalizeDecimalInput(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

func GetThisMonthRange() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	var zero T
	return zero
}
