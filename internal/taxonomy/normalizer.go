package taxonomy

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

// minReverseContainment is the shortest raw value that may match a synonym
// which contains it ("rom" -> "romance"). Shorter values match too eagerly.
const minReverseContainment = 3

// Normalizer maps raw category strings and free text to canonical category
// keys. It never fails: unknown input degrades to the fallback category.
// A Normalizer is safe for concurrent use.
type Normalizer struct {
	tax *Taxonomy
}

// NewNormalizer creates a normalizer over tax.
func NewNormalizer(tax *Taxonomy) *Normalizer {
	return &Normalizer{tax: tax}
}

// Taxonomy returns the underlying taxonomy.
func (n *Normalizer) Taxonomy() *Taxonomy { return n.tax }

// Normalize resolves raw to a canonical key. First match wins:
// key or slug, exact synonym, synonym containment in either direction,
// keyword containment, fallback.
func (n *Normalizer) Normalize(raw string) string {
	s := domain.NormalizeText(raw)
	if s == "" {
		return n.tax.FallbackKey()
	}

	if i, ok := n.tax.byKey[s]; ok {
		return n.tax.categories[i].Key
	}
	if i, ok := n.tax.bySynonym[s]; ok {
		return n.tax.categories[i].Key
	}

	reverse := utf8.RuneCountInString(s) >= minReverseContainment
	for _, c := range n.tax.categories {
		for _, syn := range c.Synonyms {
			if strings.Contains(s, syn) || (reverse && strings.Contains(syn, s)) {
				return c.Key
			}
		}
	}

	for _, c := range n.tax.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(s, kw) {
				return c.Key
			}
		}
	}

	return n.tax.FallbackKey()
}

// DetectFromText scores every non-fallback category against text: +1 for
// each distinct keyword found, +2 for each distinct synonym found. It returns
// up to three keys, highest score first, ties in declaration order. Without
// any signal the result is the fallback alone.
func (n *Normalizer) DetectFromText(text string) []string {
	s := domain.NormalizeText(text)
	if s == "" {
		return []string{n.tax.FallbackKey()}
	}

	type scored struct {
		key   string
		score int
	}
	var hits []scored
	for _, c := range n.tax.categories {
		if c.Fallback {
			continue
		}
		score := 0
		for _, kw := range c.Keywords {
			if strings.Contains(s, kw) {
				score++
			}
		}
		for _, syn := range c.Synonyms {
			if strings.Contains(s, syn) {
				score += 2
			}
		}
		if score > 0 {
			hits = append(hits, scored{key: c.Key, score: score})
		}
	}

	if len(hits) == 0 {
		return []string{n.tax.FallbackKey()}
	}

	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	out := make([]string, 0, domain.MaxQuoteThemes)
	for _, h := range hits[:min(len(hits), domain.MaxQuoteThemes)] {
		out = append(out, h.key)
	}
	return out
}

// NormalizeThemeList maps raw themes to canonical keys, deduplicated in
// first-seen order, at most three. The fallback is dropped when any other
// category is present. The result is never empty: with nothing usable it
// holds Normalize(bestKnown).
func (n *Normalizer) NormalizeThemeList(raw []string, bestKnown string) []string {
	keys := make([]string, 0, len(raw))
	for _, r := range raw {
		if domain.NormalizeText(r) == "" {
			continue
		}
		k := n.Normalize(r)
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	if len(keys) > 1 {
		fallback := n.tax.FallbackKey()
		keys = slices.DeleteFunc(keys, func(k string) bool { return k == fallback })
	}

	if len(keys) > domain.MaxDominantThemes {
		keys = keys[:domain.MaxDominantThemes]
	}
	if len(keys) == 0 {
		return []string{n.Normalize(bestKnown)}
	}
	return keys
}

// Classify assigns a quote's category and themes. An explicit category wins
// over text detection; themes come from the text with the category first.
func (n *Normalizer) Classify(text, rawCategory string) domain.QuoteClassification {
	detected := n.DetectFromText(text)

	category := detected[0]
	if domain.NormalizeText(rawCategory) != "" {
		category = n.Normalize(rawCategory)
	}

	themes := n.NormalizeThemeList(append([]string{category}, detected...), category)
	if len(themes) > domain.MaxQuoteThemes {
		themes = themes[:domain.MaxQuoteThemes]
	}
	return domain.QuoteClassification{Category: category, Themes: themes}
}
