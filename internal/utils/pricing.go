package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout     = "2006-01-02"
	currencyPrefix = "R$ "
	perDaySuffix   = "/dia"
)

var (
	ErrInvalidPrice = errors.New("invalid price")
	ErrInvalidDate  = errors.New("invalid date format, expected yyyy-mm-dd")

	priceNoise = regexp.MustCompile(`[^\d.,]`)
)

// RentalPeriod is a rental window expressed in whole calendar days.
type RentalPeriod struct {
	Start time.Time
	End   time.Time
	Days  int
}

// ParsePrice extracts the numeric per-day amount from free text such as
// "R$ 25/dia", "25,50" or "40". A comma is read as the decimal separator,
// in which case dots are thousands separators. Non-positive amounts are invalid.
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.Trim(priceNoise.ReplaceAllString(raw, ""), ".,")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q has no amount", ErrInvalidPrice, raw)
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidPrice, raw)
	}
	return amount.Round(2), nil
}

// FormatPrice renders a per-day amount the way listings display it: "R$ 25,00/dia".
func FormatPrice(amount decimal.Decimal) string {
	return currencyPrefix + strings.Replace(amount.StringFixed(2), ".", ",", 1) + perDaySuffix
}

// TotalPrice is pricePerDay * days, rounded to cents.
func TotalPrice(pricePerDay decimal.Decimal, days int) decimal.Decimal {
	return pricePerDay.Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// NormalizeDays coerces a missing or non-positive day count to a one-day rental.
func NormalizeDays(days int) int {
	if days < 1 {
		return 1
	}
	return days
}

// ParseDays reads a day count typed by a user; anything unusable becomes 1.
func ParseDays(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return NormalizeDays(n)
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate converts a yyyy-mm-dd string into midnight UTC of that day.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}
	return t, nil
}

// NewRentalPeriod returns the window starting at the start's calendar day and
// ending exactly days later, so End - Start == days * 24h.
func NewRentalPeriod(start time.Time, days int) RentalPeriod {
	s := StartOfDay(start)
	return RentalPeriod{
		Start: s,
		End:   s.AddDate(0, 0, days),
		Days:  days,
	}
}
