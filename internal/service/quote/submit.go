package quote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
)

// Submit stores a new quote for the authenticated user. Category and themes
// are assigned here once and change only through Reanalyze.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Quote, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(input.Text)
	rawCategory := ""
	if input.Category != nil {
		rawCategory = *input.Category
	}
	c := s.classifier.Classify(text, rawCategory)

	var created *domain.Quote
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.quotes.Create(txCtx, &domain.Quote{
			UserID:   userID,
			Text:     text,
			Author:   trimOrNil(input.Author),
			Source:   trimOrNil(input.Source),
			Category: c.Category,
			Themes:   c.Themes,
		})
		if createErr != nil {
			return fmt.Errorf("create quote: %w", createErr)
		}

		auditErr := s.audit.Log(txCtx, domain.AuditRecord{
			UserID:     userID,
			EntityType: domain.EntityTypeQuote,
			EntityID:   &created.ID,
			Action:     domain.AuditActionCreate,
			Changes: map[string]any{
				"category": map[string]any{"new": c.Category},
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

	s.log.InfoContext(ctx, "quote submitted",
		slog.String("user_id", userID.String()),
		slog.String("quote_id", created.ID.String()),
		slog.String("category", created.Category),
	)

	return created, nil
}
