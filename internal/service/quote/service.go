// Package quote handles quote submission and classification.
package quote

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

type quoteRepo interface {
	Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error)
	GetByID(ctx context.Context, userID, quoteID uuid.UUID) (*domain.Quote, error)
	UpdateClassification(ctx context.Context, userID, quoteID uuid.UUID, c domain.QuoteClassification) (*domain.Quote, error)
	ListByRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Quote, error)
}

type classifier interface {
	Classify(text, rawCategory string) domain.QuoteClassification
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	Log(ctx context.Context, record domain.AuditRecord) error
}

// Service provides quote operations for the authenticated user.
type Service struct {
	log        *slog.Logger
	quotes     quoteRepo
	classifier classifier
	tx         txManager
	audit      auditLogger
	loc        *time.Location
}

// NewService creates a new quote service. loc is the timezone used to
// resolve period bounds.
func NewService(
	logger *slog.Logger,
	quotes quoteRepo,
	classifier classifier,
	tx txManager,
	audit auditLogger,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		log:        logger.With("service", "quote"),
		quotes:     quotes,
		classifier: classifier,
		tx:         tx,
		audit:      audit,
		loc:        loc,
	}
}

// trimOrNil trims whitespace. Returns nil if result is empty.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
