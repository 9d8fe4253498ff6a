package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// AttachFeedback records a rating on a report. Feedback is write-once: a
// second attempt returns domain.ErrConflict. The metrics snapshot is never
// touched.
func (s *Service) AttachFeedback(ctx context.Context, userID uuid.UUID, input FeedbackInput) (*domain.PeriodReport, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fb := domain.ReportFeedback{
		Rating:    input.Rating,
		Comment:   trimOrNil(input.Comment),
		CreatedAt: s.now().UTC(),
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := s.reports.GetByIDForUpdate(txCtx, userID, input.ReportID)
		if err != nil {
			return notGenerated(err)
		}
		if feedbackOf(stored) != nil {
			return fmt.Errorf("report %s already has feedback: %w", input.ReportID, domain.ErrConflict)
		}

		if err := s.reports.SetFeedback(txCtx, input.ReportID, fb); err != nil {
			return fmt.Errorf("set feedback: %w", err)
		}

		if s.audit != nil {
			id := input.ReportID
			if err := s.audit.Log(txCtx, domain.AuditRecord{
				UserID:     userID,
				EntityType: domain.EntityTypeReport,
				EntityID:   &id,
				Action:     domain.AuditActionFeedback,
				Changes:    map[string]any{"rating": map[string]any{"new": fb.Rating}},
			}); err != nil {
				return fmt.Errorf("audit log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "report feedback attached",
		slog.String("user_id", userID.String()),
		slog.String("report_id", input.ReportID.String()),
		slog.Int("rating", fb.Rating),
	)

	return s.GetByID(ctx, userID, input.ReportID)
}

func feedbackOf(stored domain.StoredReport) *domain.ReportFeedback {
	switch r := stored.(type) {
	case *domain.PeriodReport:
		return r.Feedback
	case *domain.PeriodReportV1:
		return r.Feedback
	}
	return nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
