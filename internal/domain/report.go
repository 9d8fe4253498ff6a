package domain

import (
	"time"

	"github.com/google/uuid"
)

// Report schema versions as persisted in period_reports.schema_version.
const (
	ReportSchemaV1 = 1 // quote references only, no metrics snapshot
	ReportSchemaV2 = 2 // frozen metrics snapshot
)

// MaxDominantThemes caps PeriodReport.DominantThemes.
const MaxDominantThemes = 3

// MetricsSnapshot is the activity summary frozen at generation time.
type MetricsSnapshot struct {
	QuoteCount        int `json:"quote_count"`
	UniqueAuthorCount int `json:"unique_author_count"`
	ActiveDayCount    int `json:"active_day_count"`
	ProgressPct       int `json:"progress_pct"`
}

// ReportRecommendation is one resolved catalog suggestion stored on a report.
type ReportRecommendation struct {
	CatalogEntryID uuid.UUID `json:"catalog_entry_id"`
	RelevanceScore int       `json:"relevance_score"`
	Reasoning      string    `json:"reasoning"`
	Fallback       bool      `json:"fallback,omitempty"`
}

// ReportFeedback is the optional user rating attached to a final report.
type ReportFeedback struct {
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredReport is a period report as read from storage: either a current
// *PeriodReport or a legacy *PeriodReportV1 that still needs an upgrade.
type StoredReport interface {
	SchemaVersion() int
	ReportID() uuid.UUID
}

// PeriodReport is the immutable per-user, per-period summary. At most one
// exists per (UserID, Period).
type PeriodReport struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Period          Period
	Metrics         MetricsSnapshot
	QuoteIDs        []uuid.UUID
	DominantThemes  []string
	Recommendations []ReportRecommendation
	Feedback        *ReportFeedback
	SentAt          time.Time
	CreatedAt       time.Time
}

func (r *PeriodReport) SchemaVersion() int  { return ReportSchemaV2 }
func (r *PeriodReport) ReportID() uuid.UUID { return r.ID }

// PeriodReportV1 is a report written before metrics snapshots existed.
type PeriodReportV1 struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Period          Period
	QuoteIDs        []uuid.UUID
	DominantThemes  []string
	Recommendations []ReportRecommendation
	Feedback        *ReportFeedback
	SentAt          time.Time
	CreatedAt       time.Time
}

func (r *PeriodReportV1) SchemaVersion() int  { return ReportSchemaV1 }
func (r *PeriodReportV1) ReportID() uuid.UUID { return r.ID }

// Upgrade converts a legacy report into the current shape using a snapshot
// recomputed from the referenced quotes.
func (r *PeriodReportV1) Upgrade(metrics MetricsSnapshot) *PeriodReport {
	return &PeriodReport{
		ID:              r.ID,
		UserID:          r.UserID,
		Period:          r.Period,
		Metrics:         metrics,
		QuoteIDs:        r.QuoteIDs,
		DominantThemes:  r.DominantThemes,
		Recommendations: r.Recommendations,
		Feedback:        r.Feedback,
		SentAt:          r.SentAt,
		CreatedAt:       r.CreatedAt,
	}
}

// ComputeSnapshot derives the activity metrics for a set of quotes. Both
// generation and legacy upgrade go through this function, so they agree for
// the same quote set. Active days are calendar days in loc.
func ComputeSnapshot(quotes []Quote, targetQuoteCount int, loc *time.Location) MetricsSnapshot {
	if loc == nil {
		loc = time.UTC
	}

	authors := make(map[string]struct{}, len(quotes))
	days := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if a := q.AuthorKey(); a != "" {
			authors[a] = struct{}{}
		}
		days[q.CreatedAt.In(loc).Format(time.DateOnly)] = struct{}{}
	}

	return MetricsSnapshot{
		QuoteCount:        len(quotes),
		UniqueAuthorCount: len(authors),
		ActiveDayCount:    len(days),
		ProgressPct:       ProgressPct(len(quotes), targetQuoteCount),
	}
}

// ProgressPct returns min(100, round(count/target*100)), rounding half up.
// Integer arithmetic keeps the result identical across call sites.
func ProgressPct(count, target int) int {
	if target <= 0 || count <= 0 {
		return 0
	}
	pct := (count*200 + target) / (2 * target)
	return min(pct, 100)
}

// Delta is the change of the countable metrics versus the prior period.
type Delta struct {
	QuoteCount        int `json:"quote_count"`
	UniqueAuthorCount int `json:"unique_author_count"`
	ActiveDayCount    int `json:"active_day_count"`
}

// ComputeDelta returns current minus previous. A nil previous yields the
// zero Delta so callers never special-case a missing prior period.
func ComputeDelta(current MetricsSnapshot, previous *MetricsSnapshot) Delta {
	if previous == nil {
		return Delta{}
	}
	return Delta{
		QuoteCount:        current.QuoteCount - previous.QuoteCount,
		UniqueAuthorCount: current.UniqueAuthorCount - previous.UniqueAuthorCount,
		ActiveDayCount:    current.ActiveDayCount - previous.ActiveDayCount,
	}
}
