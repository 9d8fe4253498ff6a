package report

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

const (
	MinRating          = 1
	MaxRating          = 5
	MaxFeedbackComment = 2000
)

// FeedbackInput holds a user's rating of a report.
type FeedbackInput struct {
	ReportID uuid.UUID
	Rating   int
	Comment  *string
}

// Validate checks all fields and collects all errors.
func (i FeedbackInput) Validate() error {
	var errs []domain.FieldError

	if i.ReportID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "report_id", Message: "required"})
	}
	if i.Rating < MinRating || i.Rating > MaxRating {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	if i.Comment != nil && utf8.RuneCountInString(strings.TrimSpace(*i.Comment)) > MaxFeedbackComment {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "max 2000 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
