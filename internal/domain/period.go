package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodKind selects the reporting calendar.
type PeriodKind string

const (
	PeriodWeek  PeriodKind = "WEEK"
	PeriodMonth PeriodKind = "MONTH"
)

func (k PeriodKind) String() string { return string(k) }

func (k PeriodKind) IsValid() bool {
	return k == PeriodWeek || k == PeriodMonth
}

// Period identifies one reporting interval: an ISO week-year pair or a
// month-year pair. The zero value is invalid.
type Period struct {
	Kind   PeriodKind
	Year   int
	Number int // ISO week (1..53) or month (1..12)
}

// PeriodFor derives the period containing t, evaluated in loc.
func PeriodFor(kind PeriodKind, t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	if kind == PeriodMonth {
		return Period{Kind: PeriodMonth, Year: local.Year(), Number: int(local.Month())}
	}
	year, week := local.ISOWeek()
	return Period{Kind: PeriodWeek, Year: year, Number: week}
}

// Key renders the canonical period key: "2025-W03" for weeks, "2025-03" for months.
func (p Period) Key() string {
	if p.Kind == PeriodMonth {
		return fmt.Sprintf("%04d-%02d", p.Year, p.Number)
	}
	return fmt.Sprintf("%04d-W%02d", p.Year, p.Number)
}

func (p Period) String() string { return p.Key() }

// IsZero reports whether p is the zero Period.
func (p Period) IsZero() bool { return p == Period{} }

// Validate checks that p names an existing calendar interval.
func (p Period) Validate() error {
	switch p.Kind {
	case PeriodWeek:
		if p.Year < 1 || p.Number < 1 || p.Number > isoWeeksInYear(p.Year) {
			return NewValidationError("period", fmt.Sprintf("week %d does not exist in %d", p.Number, p.Year))
		}
	case PeriodMonth:
		if p.Year < 1 || p.Number < 1 || p.Number > 12 {
			return NewValidationError("period", fmt.Sprintf("month %d is out of range", p.Number))
		}
	default:
		return NewValidationError("period", "unknown period kind")
	}
	return nil
}

// ParsePeriod parses a key produced by Period.Key.
func ParsePeriod(key string) (Period, error) {
	key = strings.TrimSpace(key)
	yearPart, rest, ok := strings.Cut(key, "-")
	if !ok {
		return Period{}, NewValidationError("period", fmt.Sprintf("malformed period key %q", key))
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return Period{}, NewValidationError("period", fmt.Sprintf("malformed year in %q", key))
	}

	kind := PeriodMonth
	if strings.HasPrefix(rest, "W") || strings.HasPrefix(rest, "w") {
		kind = PeriodWeek
		rest = rest[1:]
	}

	n, err := strconv.Atoi(rest)
	if err != nil || len(rest) != 2 {
		return Period{}, NewValidationError("period", fmt.Sprintf("malformed number in %q", key))
	}

	p := Period{Kind: kind, Year: year, Number: n}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Bounds returns the half-open interval [start, end) covered by p in loc.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	if p.Kind == PeriodMonth {
		start := time.Date(p.Year, time.Month(p.Number), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
	start := isoWeekStart(p.Year, p.Number, loc)
	return start, start.AddDate(0, 0, 7)
}

// Previous returns the adjacent prior period of the same kind.
func (p Period) Previous() Period {
	if p.Kind == PeriodMonth {
		if p.Number == 1 {
			return Period{Kind: PeriodMonth, Year: p.Year - 1, Number: 12}
		}
		return Period{Kind: PeriodMonth, Year: p.Year, Number: p.Number - 1}
	}
	start := isoWeekStart(p.Year, p.Number, time.UTC)
	year, week := start.AddDate(0, 0, -7).ISOWeek()
	return Period{Kind: PeriodWeek, Year: year, Number: week}
}

// isoWeekStart returns Monday 00:00 of the given ISO week. January 4th is
// always in week 1.
func isoWeekStart(year, week int, loc *time.Location) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7 // days since Monday
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (week-1)*7)
}

func isoWeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
