package quote

import (
	"context"
	"fmt"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
)

// ListForPeriod returns the authenticated user's quotes created within period.
func (s *Service) ListForPeriod(ctx context.Context, period domain.Period) ([]domain.Quote, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := period.Validate(); err != nil {
		return nil, err
	}

	from, to := period.Bounds(s.loc)
	quotes, err := s.quotes.ListByRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}
