package rest

import (
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// Period aliases accepted wherever a period key is.
const (
	refCurrentWeek   = "current-week"
	refCurrentMonth  = "current-month"
	refPreviousWeek  = "previous-week"
	refPreviousMonth = "previous-month"
)

type periodResolver interface {
	CurrentPeriod(kind domain.PeriodKind) domain.Period
}

// resolvePeriod accepts a period key ("2025-W04", "2025-01") or an alias
// evaluated in the report timezone.
func resolvePeriod(periods periodResolver, ref string) (domain.Period, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case refCurrentWeek:
		return periods.CurrentPeriod(domain.PeriodWeek), nil
	case refCurrentMonth:
		return periods.CurrentPeriod(domain.PeriodMonth), nil
	case refPreviousWeek:
		return periods.CurrentPeriod(domain.PeriodWeek).Previous(), nil
	case refPreviousMonth:
		return periods.CurrentPeriod(domain.PeriodMonth).Previous(), nil
	}
	return domain.ParsePeriod(ref)
}
