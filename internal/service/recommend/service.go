package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/metrics"
	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
)

const (
	defaultLimit = 3
	maxLimit     = 20

	themesPlaceholder = "{themes}"
)

type catalogRepo interface {
	ListActive(ctx context.Context) ([]domain.CatalogEntry, error)
}

// Templates renders the reasoning line attached to each recommendation.
// {themes} is replaced by the matched category keys.
type Templates struct {
	Match    string
	Fallback string
}

// DefaultTemplates are used when Config leaves templates empty.
var DefaultTemplates = Templates{
	Match:    "Picked for your recent themes: {themes}.",
	Fallback: "A good place to start while your themes take shape: {themes}.",
}

// Config tunes the matcher.
type Config struct {
	DefaultLimit int
	// UniversalCategory is the key or slug of the category used when nothing
	// matches. Empty means the highest-priority taxonomy category.
	UniversalCategory string
	Templates         Templates
}

// Result is a ranked, reasoned recommendation list.
type Result struct {
	Items []Match
	// Fallback is true when the universal fallback replaced the ranking.
	Fallback bool
}

// Service ranks catalog entries against a user's canonical themes.
type Service struct {
	log       *slog.Logger
	catalog   catalogRepo
	universal string
	limit     int
	templates Templates
}

// NewService creates a recommendation service. The universal category is
// resolved against tax once.
func NewService(logger *slog.Logger, catalog catalogRepo, tax *taxonomy.Taxonomy, cfg Config) (*Service, error) {
	universal := tax.Categories()[0].Key
	if cfg.UniversalCategory != "" {
		c, ok := tax.Lookup(cfg.UniversalCategory)
		if !ok {
			return nil, fmt.Errorf("recommend: universal category %q is not in taxonomy %s", cfg.UniversalCategory, tax.Version())
		}
		universal = c.Key
	}

	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = defaultLimit
	}

	tpl := cfg.Templates
	if tpl.Match == "" {
		tpl.Match = DefaultTemplates.Match
	}
	if tpl.Fallback == "" {
		tpl.Fallback = DefaultTemplates.Fallback
	}

	return &Service{
		log:       logger.With("service", "recommend"),
		catalog:   catalog,
		universal: universal,
		limit:     limit,
		templates: tpl,
	}, nil
}

// UniversalCategory returns the resolved fallback category key.
func (s *Service) UniversalCategory() string { return s.universal }

// Recommend returns up to limit active catalog entries for themes. A zero
// limit uses the configured default; larger values are clamped to 20.
// With no active entries at all it returns domain.ErrEmptyCatalog.
func (s *Service) Recommend(ctx context.Context, themes []string, limit int) (Result, error) {
	limit = s.clampLimit(limit)

	entries, err := s.catalog.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list catalog: %w", err)
	}

	items := Rank(entries, themes, limit, s.universal)
	if len(items) == 0 {
		return Result{}, domain.ErrEmptyCatalog
	}

	res := Result{Items: items, Fallback: items[0].Fallback}
	for i := range res.Items {
		res.Items[i].Reasoning = s.reasoning(res.Items[i])
	}

	if res.Fallback {
		metrics.RecordRecommendationFallback()
		s.log.InfoContext(ctx, "no catalog overlap, using universal fallback",
			slog.Any("themes", themes),
			slog.String("universal", s.universal),
			slog.Int("count", len(items)),
		)
	}

	return res, nil
}

func (s *Service) reasoning(m Match) string {
	tpl := s.templates.Match
	if m.Fallback {
		tpl = s.templates.Fallback
	} else if m.Entry.ReasoningTemplate != nil && strings.TrimSpace(*m.Entry.ReasoningTemplate) != "" {
		tpl = *m.Entry.ReasoningTemplate
	}

	themes := strings.Join(m.Matched, ", ")
	if themes == "" {
		themes = s.universal
	}
	return strings.ReplaceAll(tpl, themesPlaceholder, themes)
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limit
	}
	return min(limit, maxLimit)
}
