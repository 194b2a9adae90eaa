package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"driverent-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// MaxAmount is the largest value the NUMERIC(12,2) money columns hold.
const MaxAmount = 9999999999.99

// ParseCalendarDay parses a yyyy-mm-dd date, or a full RFC 3339 timestamp, as
// UTC midnight of the calendar day written. Time of day is discarded.
func ParseCalendarDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := ts.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return t, nil
}

// FormatCalendarDay formats t as yyyy-mm-dd.
func FormatCalendarDay(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// BillableDays returns the number of days billed for the period
// [startDate, endDate]: the rounded difference in days, never less than 1.
// Same-day and inverted ranges bill one day.
func BillableDays(startDate, endDate string) (int, error) {
	start, err := ParseCalendarDay(startDate)
	if err != nil {
		return 0, &domain.ErrUnprocessable{Message: fmt.Sprintf("data_inicio: %v", err)}
	}
	end, err := ParseCalendarDay(endDate)
	if err != nil {
		return 0, &domain.ErrUnprocessable{Message: fmt.Sprintf("data_fim: %v", err)}
	}

	days := int(math.Round(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days, nil
}

// ValidateDailyRate rejects rates that are not finite positive numbers or
// that do not fit the money columns.
func ValidateDailyRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return &domain.ErrUnprocessable{Message: "valor_por_dia must be a positive number"}
	}
	if rate > MaxAmount {
		return &domain.ErrUnprocessable{Message: fmt.Sprintf("valor_por_dia must not exceed %.2f", MaxAmount)}
	}
	return nil
}

// RoundCents rounds v to the nearest cent.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// RentalTotal computes the billable days and total amount, rounded to cents,
// for a period at the given daily rate.
func RentalTotal(startDate, endDate string, rate float64) (days int, total float64, err error) {
	days, err = BillableDays(startDate, endDate)
	if err != nil {
		return 0, 0, err
	}
	if err := ValidateDailyRate(rate); err != nil {
		return 0, 0, err
	}
	total = RoundCents(float64(days) * rate)
	if total > MaxAmount {
		return 0, 0, &domain.ErrUnprocessable{Message: fmt.Sprintf("valor_total must not exceed %.2f", MaxAmount)}
	}
	return days, total, nil
}

// RangesOverlap reports whether the closed ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day. Arguments are yyyy-mm-dd strings,
// which order lexically.
func RangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return !(aEnd < bStart || bEnd < aStart)
}
