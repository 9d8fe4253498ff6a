package reportapi

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// FromReport converts a domain report. Recommendation entries are left
// empty; the server hydrates them separately.
func FromReport(r *domain.PeriodReport) Report {
	out := Report{
		ID:              r.ID,
		PeriodKey:       r.Period.Key(),
		Metrics:         Metrics(r.Metrics),
		QuoteIDs:        r.QuoteIDs,
		DominantThemes:  r.DominantThemes,
		Recommendations: make([]Recommendation, len(r.Recommendations)),
		SentAt:          r.SentAt,
		CreatedAt:       r.CreatedAt,
	}
	for i, rec := range r.Recommendations {
		out.Recommendations[i] = Recommendation{
			CatalogEntryID: rec.CatalogEntryID,
			RelevanceScore: rec.RelevanceScore,
			Reasoning:      rec.Reasoning,
			Fallback:       rec.Fallback,
		}
	}
	if r.Feedback != nil {
		out.Feedback = &Feedback{Rating: r.Feedback.Rating, Comment: r.Feedback.Comment, CreatedAt: r.Feedback.CreatedAt}
	}
	return out
}

// ToDomain converts a wire report back into the domain model for userID.
func (r Report) ToDomain(userID uuid.UUID) (*domain.PeriodReport, error) {
	period, err := domain.ParsePeriod(r.PeriodKey)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.ID, err)
	}

	out := &domain.PeriodReport{
		ID:              r.ID,
		UserID:          userID,
		Period:          period,
		Metrics:         domain.MetricsSnapshot(r.Metrics),
		QuoteIDs:        r.QuoteIDs,
		DominantThemes:  r.DominantThemes,
		Recommendations: make([]domain.ReportRecommendation, len(r.Recommendations)),
		SentAt:          r.SentAt,
		CreatedAt:       r.CreatedAt,
	}
	for i, rec := range r.Recommendations {
		out.Recommendations[i] = domain.ReportRecommendation{
			CatalogEntryID: rec.CatalogEntryID,
			RelevanceScore: rec.RelevanceScore,
			Reasoning:      rec.Reasoning,
			Fallback:       rec.Fallback,
		}
	}
	if r.Feedback != nil {
		out.Feedback = &domain.ReportFeedback{Rating: r.Feedback.Rating, Comment: r.Feedback.Comment, CreatedAt: r.Feedback.CreatedAt}
	}
	return out, nil
}

// FromDelta converts a domain delta.
func FromDelta(d domain.Delta) Delta { return Delta(d) }

// FromCatalogEntry converts a domain catalog entry.
func FromCatalogEntry(e domain.CatalogEntry) CatalogEntry {
	return CatalogEntry{
		ID:          e.ID,
		Slug:        e.Slug,
		Kind:        string(e.Kind),
		Title:       e.Title,
		Author:      e.Author,
		Description: e.Description,
		PriceMinor:  e.PriceMinor,
		Currency:    e.Currency,
		Categories:  e.Categories,
	}
}

// FromQuote converts a domain quote.
func FromQuote(q *domain.Quote) Quote {
	return Quote{
		ID:        q.ID,
		Text:      q.Text,
		Author:    q.Author,
		Source:    q.Source,
		Category:  q.Category,
		Themes:    q.Themes,
		CreatedAt: q.CreatedAt,
	}
}
