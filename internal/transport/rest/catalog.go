package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/quotediary-backend/internal/service/recommend"
	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
	"github.com/heartmarshall/quotediary-backend/pkg/reportapi"
)

type recommender interface {
	Recommend(ctx context.Context, themes []string, limit int) (recommend.Result, error)
}

type themeNormalizer interface {
	NormalizeThemeList(raw []string, bestKnown string) []string
	Taxonomy() *taxonomy.Taxonomy
}

// CatalogHandler serves recommendations and the taxonomy.
type CatalogHandler struct {
	recommender recommender
	normalizer  themeNormalizer
	log         *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(rec recommender, normalizer themeNormalizer, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{recommender: rec, normalizer: normalizer, log: logger.With("handler", "catalog")}
}

// Recommendations handles GET /recommendations?themes=a,b&limit=n. Raw
// themes are normalized first; no themes yields the universal fallback.
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, h.log, invalidParam("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	var themes []string
	if raw := splitThemes(q["themes"]); len(raw) > 0 {
		themes = h.normalizer.NormalizeThemeList(raw, "")
	}

	res, err := h.recommender.Recommend(r.Context(), themes, limit)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	out := reportapi.RecommendationsResponse{
		Items:    make([]reportapi.Recommendation, len(res.Items)),
		Fallback: res.Fallback,
	}
	for i, m := range res.Items {
		entry := reportapi.FromCatalogEntry(m.Entry)
		out.Items[i] = reportapi.Recommendation{
			CatalogEntryID: m.Entry.ID,
			RelevanceScore: m.Score,
			Reasoning:      m.Reasoning,
			Fallback:       m.Fallback,
			Entry:          &entry,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Taxonomy handles GET /taxonomy.
func (h *CatalogHandler) Taxonomy(w http.ResponseWriter, _ *http.Request) {
	tax := h.normalizer.Taxonomy()
	cats := tax.Categories()

	out := reportapi.TaxonomyResponse{
		Version:    tax.Version(),
		Categories: make([]reportapi.Category, len(cats)),
	}
	for i, c := range cats {
		out.Categories[i] = reportapi.Category{
			Key:              c.Key,
			Slug:             c.Slug,
			Priority:         c.Priority,
			ExcludeFromTrend: c.ExcludeFromTrend,
			Fallback:         c.Fallback,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// splitThemes accepts both ?themes=a,b and repeated ?themes=a&themes=b.
func splitThemes(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}
