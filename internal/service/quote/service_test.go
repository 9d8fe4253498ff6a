package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
	"github.com/heartmarshall/quotediary-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockQuoteRepo struct {
	CreateFunc               func(ctx context.Context, q *domain.Quote) (*domain.Quote, error)
	GetByIDFunc              func(ctx context.Context, userID, quoteID uuid.UUID) (*domain.Quote, error)
	UpdateClassificationFunc func(ctx context.Context, userID, quoteID uuid.UUID, c domain.QuoteClassification) (*domain.Quote, error)
	ListByRangeFunc          func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Quote, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	return m.CreateFunc(ctx, q)
}

func (m *mockQuoteRepo) GetByID(ctx context.Context, userID, quoteID uuid.UUID) (*domain.Quote, error) {
	return m.GetByIDFunc(ctx, userID, quoteID)
}

func (m *mockQuoteRepo) UpdateClassification(ctx context.Context, userID, quoteID uuid.UUID, c domain.QuoteClassification) (*domain.Quote, error) {
	return m.UpdateClassificationFunc(ctx, userID, quoteID, c)
}

func (m *mockQuoteRepo) ListByRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Quote, error) {
	return m.ListByRangeFunc(ctx, userID, from, to)
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockAuditLogger struct {
	records []domain.AuditRecord
}

func (m *mockAuditLogger) Log(_ context.Context, record domain.AuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(repo *mockQuoteRepo, audit *mockAuditLogger) *Service {
	if audit == nil {
		audit = &mockAuditLogger{}
	}
	return NewService(slog.Default(), repo, taxonomy.NewNormalizer(taxonomy.Default()), &mockTxManager{}, audit, time.UTC)
}

func authCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithUserID(context.Background(), userID)
}

func ptrString(s string) *string { return &s }

func echoCreate() func(context.Context, *domain.Quote) (*domain.Quote, error) {
	return func(_ context.Context, q *domain.Quote) (*domain.Quote, error) {
		out := *q
		out.ID = uuid.New()
		out.CreatedAt = time.Now()
		return &out, nil
	}
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestService_Submit_ClassifiesFromText(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	audit := &mockAuditLogger{}
	repo := &mockQuoteRepo{CreateFunc: echoCreate()}
	svc := newTestService(repo, audit)

	got, err := svc.Submit(authCtx(userID), SubmitInput{
		Text:   "  Love is the only gold.  ",
		Author: ptrString(" Alfred Tennyson "),
		Source: ptrString("   "),
	})
	require.NoError(t, err)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "Love is the only gold.", got.Text)
	assert.Equal(t, "Alfred Tennyson", *got.Author)
	assert.Nil(t, got.Source)
	assert.Equal(t, "Love & Relationships", got.Category)
	assert.Equal(t, []string{"Love & Relationships"}, got.Themes)
	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditActionCreate, audit.records[0].Action)
	assert.Equal(t, domain.EntityTypeQuote, audit.records[0].EntityType)
}

func TestService_Submit_ExplicitCategoryWins(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockQuoteRepo{CreateFunc: echoCreate()}, nil)

	got, err := svc.Submit(authCtx(uuid.New()), SubmitInput{
		Text:     "Love is the only gold.",
		Category: ptrString("career"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Money & Career", got.Category)
	assert.Equal(t, []string{"Money & Career", "Love & Relationships"}, got.Themes)
}

func TestService_Submit_Unauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockQuoteRepo{}, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Submit_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockQuoteRepo{}, nil)

	_, err := svc.Submit(authCtx(uuid.New()), SubmitInput{Text: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Submit(authCtx(uuid.New()), SubmitInput{Text: strings.Repeat("a", MaxTextLength+1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Submit(authCtx(uuid.New()), SubmitInput{Text: "ok", Author: ptrString(strings.Repeat("b", MaxAuthorLength+1))})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "author", verr.Errors[0].Field)
}

func TestService_Submit_RepoError(t *testing.T) {
	t.Parallel()

	repo := &mockQuoteRepo{CreateFunc: func(context.Context, *domain.Quote) (*domain.Quote, error) {
		return nil, domain.StorageError("insert quote", errors.New("disk full"))
	}}
	svc := newTestService(repo, nil)

	_, err := svc.Submit(authCtx(uuid.New()), SubmitInput{Text: "anything"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

// ---------------------------------------------------------------------------
// Reanalyze
// ---------------------------------------------------------------------------

func TestService_Reanalyze_UpdatesClassification(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	existing := &domain.Quote{ID: uuid.New(), UserID: userID, Text: "Meditation calms the mind.", Category: "Other", Themes: []string{"Other"}}
	var saved domain.QuoteClassification
	repo := &mockQuoteRepo{
		GetByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Quote, error) { return existing, nil },
		UpdateClassificationFunc: func(_ context.Context, _, _ uuid.UUID, c domain.QuoteClassification) (*domain.Quote, error) {
			saved = c
			out := *existing
			out.Category, out.Themes = c.Category, c.Themes
			return &out, nil
		},
	}
	audit := &mockAuditLogger{}
	svc := newTestService(repo, audit)

	got, err := svc.Reanalyze(authCtx(userID), ReanalyzeInput{QuoteID: existing.ID})
	require.NoError(t, err)

	assert.Equal(t, "Health & Mindfulness", got.Category)
	assert.Equal(t, saved.Category, got.Category)
	require.Len(t, audit.records, 1)
	assert.Equal(t, domain.AuditActionReanalyze, audit.records[0].Action)
}

func TestService_Reanalyze_NoChangeSkipsWrite(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	existing := &domain.Quote{ID: uuid.New(), UserID: userID, Text: "Meditation calms the mind.",
		Category: "Health & Mindfulness", Themes: []string{"Health & Mindfulness"}}
	repo := &mockQuoteRepo{
		GetByIDFunc: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Quote, error) { return existing, nil },
	}
	audit := &mockAuditLogger{}
	svc := newTestService(repo, audit)

	got, err := svc.Reanalyze(authCtx(userID), ReanalyzeInput{QuoteID: existing.ID})
	require.NoError(t, err)
	assert.Same(t, existing, got)
	assert.Empty(t, audit.records)
}

func TestService_Reanalyze_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockQuoteRepo{
		GetByIDFunc: func(_ context.Context, _, id uuid.UUID) (*domain.Quote, error) {
			return nil, fmt.Errorf("quote %s: %w", id, domain.ErrNotFound)
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Reanalyze(authCtx(uuid.New()), ReanalyzeInput{QuoteID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Reanalyze(authCtx(uuid.New()), ReanalyzeInput{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---------------------------------------------------------------------------
// ListForPeriod
// ---------------------------------------------------------------------------

func TestService_ListForPeriod_UsesBounds(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	var gotFrom, gotTo time.Time
	repo := &mockQuoteRepo{
		ListByRangeFunc: func(_ context.Context, _ uuid.UUID, from, to time.Time) ([]domain.Quote, error) {
			gotFrom, gotTo = from, to
			return []domain.Quote{{ID: uuid.New()}}, nil
		},
	}
	svc := NewService(slog.Default(), repo, taxonomy.NewNormalizer(taxonomy.Default()), &mockTxManager{}, &mockAuditLogger{}, loc)

	got, err := svc.ListForPeriod(authCtx(uuid.New()), domain.Period{Kind: domain.PeriodMonth, Year: 2025, Number: 2})
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.True(t, gotFrom.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, loc)))
	assert.True(t, gotTo.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, loc)))
}

func TestService_ListForPeriod_InvalidPeriod(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockQuoteRepo{}, nil)

	_, err := svc.ListForPeriod(authCtx(uuid.New()), domain.Period{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
