package recommend

import (
	"cmp"
	"slices"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// Match is one ranked catalog entry.
type Match struct {
	Entry domain.CatalogEntry
	// Score is the number of user themes the entry is tagged with.
	Score int
	// Matched lists the shared category keys in user-theme order.
	Matched []string
	// Fallback marks entries chosen by the universal fallback.
	Fallback  bool
	Reasoning string
}

// Rank orders active entries by relevance to themes and returns at most
// limit of them. When no entry shares a theme, the ranking is discarded and
// the highest-priority active entries tagged with universal are returned
// instead; if none carry it, the highest-priority active entries are used.
// The result is empty only when entries has no active entry.
//
// Rank is pure: it does not modify entries and always yields the same order
// for the same input.
func Rank(entries []domain.CatalogEntry, themes []string, limit int, universal string) []Match {
	if limit <= 0 {
		return nil
	}

	active := make([]domain.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		return nil
	}

	themes = dedupe(themes)
	matches := make([]Match, 0, len(active))
	for _, e := range active {
		var shared []string
		for _, th := range themes {
			if e.HasCategory(th) {
				shared = append(shared, th)
			}
		}
		matches = append(matches, Match{Entry: e, Score: len(shared), Matched: shared})
	}
	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return byPriority(a.Entry, b.Entry)
	})

	if matches[0].Score > 0 {
		return matches[:min(limit, len(matches))]
	}

	return universalFallback(active, limit, universal)
}

func universalFallback(active []domain.CatalogEntry, limit int, universal string) []Match {
	pool := make([]domain.CatalogEntry, 0, len(active))
	for _, e := range active {
		if e.HasCategory(universal) {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		pool = slices.Clone(active)
	}
	slices.SortFunc(pool, byPriority)

	out := make([]Match, 0, min(limit, len(pool)))
	for _, e := range pool[:min(limit, len(pool))] {
		m := Match{Entry: e, Fallback: true}
		if e.HasCategory(universal) {
			m.Matched = []string{universal}
		}
		out = append(out, m)
	}
	return out
}

// byPriority orders by priority desc, newest first, then slug for a total order.
func byPriority(a, b domain.CatalogEntry) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.Slug, b.Slug)
}

func dedupe(themes []string) []string {
	out := make([]string, 0, len(themes))
	for _, t := range themes {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
