package entity

import (
	"fmt"
	"time"

	"github.com/diillson/aws-cost-insights-go/internal/shared/types"
)

// Today retorna a data de referência usada pelos construtores de DateRange.
// É uma variável para permitir a injeção de um relógio fixo nos testes.
var Today = func() time.Time {
	return time.Now().UTC()
}

// DateRange is a half-open date interval following the Cost Explorer
// convention: the end date is exclusive. The zero value is not valid; use one
// of the constructors, which enforce start < end.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange creates a DateRange from two dates, truncated to day precision.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if !start.Before(end) {
		return DateRange{}, fmt.Errorf("%w: start %s, end %s",
			types.ErrInvalidRange, start.Format(dateLayout), end.Format(dateLayout))
	}
	return DateRange{start: start, end: end}, nil
}

// ParseDateRange creates a DateRange from two ISO date strings (YYYY-MM-DD).
func ParseDateRange(start, end string) (DateRange, error) {
	startDate, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(startDate, endDate)
}

// DateRangeFromDays creates a DateRange looking back the given number of days
// from an end date. A zero end date means today.
func DateRangeFromDays(days int, end time.Time) (DateRange, error) {
	if days <= 0 {
		return DateRange{}, fmt.Errorf("%w: days must be > 0, got %d", types.ErrInvalidArgument, days)
	}
	endDate := truncateToDay(end)
	if end.IsZero() {
		endDate = truncateToDay(Today())
	}
	return NewDateRange(endDate.AddDate(0, 0, -days), endDate)
}

// DateRangeFromMonths creates a DateRange looking back the given number of
// whole calendar months from an end date. The start lands on the first day of
// the month, not on a day-preserving subtraction: 3 months back from Nov 5
// starts on Aug 1. A zero end date means today.
func DateRangeFromMonths(months int, end time.Time) (DateRange, error) {
	if months <= 0 || months > 12 {
		return DateRange{}, fmt.Errorf("%w: months must be in 1..12, got %d", types.ErrInvalidArgument, months)
	}
	endDate := truncateToDay(end)
	if end.IsZero() {
		endDate = truncateToDay(Today())
	}

	// Aritmética em meses absolutos para atravessar a virada de ano.
	totalMonths := endDate.Year()*12 + int(endDate.Month()) - 1 - months
	year, monthIdx := totalMonths/12, totalMonths%12
	startDate := time.Date(year, time.Month(monthIdx+1), 1, 0, 0, 0, 0, time.UTC)

	return NewDateRange(startDate, endDate)
}

// Start returns the inclusive start date.
func (d DateRange) Start() time.Time { return d.start }

// End returns the exclusive end date.
func (d DateRange) End() time.Time { return d.end }

// StartISO returns the start date in the ISO format the Cost Explorer API expects.
func (d DateRange) StartISO() string { return d.start.Format(dateLayout) }

// EndISO returns the end date in the ISO format the Cost Explorer API expects.
func (d DateRange) EndISO() string { return d.end.Format(dateLayout) }

func (d DateRange) String() string {
	return fmt.Sprintf("%s to %s", d.StartISO(), d.EndISO())
}

const dateLayout = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidDate, value)
	}
	return parsed, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
