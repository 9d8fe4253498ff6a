package quote

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
)

// Reanalyze classifies an existing quote again, optionally with an explicit
// category. Reports already generated keep their frozen snapshot.
func (s *Service) Reanalyze(ctx context.Context, input ReanalyzeInput) (*domain.Quote, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Quote
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.quotes.GetByID(txCtx, userID, input.QuoteID)
		if err != nil {
			return fmt.Errorf("get quote: %w", err)
		}

		rawCategory := ""
		if input.Category != nil {
			rawCategory = *input.Category
		}
		c := s.classifier.Classify(existing.Text, rawCategory)

		if c.Category == existing.Category && slices.Equal(c.Themes, existing.Themes) {
			updated = existing
			return nil
		}

		updated, err = s.quotes.UpdateClassification(txCtx, userID, input.QuoteID, c)
		if err != nil {
			return fmt.Errorf("update classification: %w", err)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     userID,
			EntityType: domain.EntityTypeQuote,
			EntityID:   &updated.ID,
			Action:     domain.AuditActionReanalyze,
			Changes: map[string]any{
				"category": map[string]any{"old": existing.Category, "new": c.Category},
				"themes":   map[string]any{"old": existing.Themes, "new": c.Themes},
			},
		})
		if auditErr != nil {
			return fmt.Errorf("audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "quote reanalyzed",
		slog.String("user_id", userID.String()),
		slog.String("quote_id", updated.ID.String()),
		slog.String("category", updated.Category),
	)

	return updated, nil
}
