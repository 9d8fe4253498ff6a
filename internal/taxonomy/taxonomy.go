// Package taxonomy holds the canonical quote categories and the normalizer
// that maps raw category strings and free text onto them.
//
// A Taxonomy is immutable after construction. Lookup tables are built once
// in New; Normalizer and the recommendation matcher only read them.
package taxonomy

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/quotediary-backend/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

// Category is one canonical category.
type Category struct {
	Key              string   `yaml:"key"`
	Slug             string   `yaml:"slug"`
	Synonyms         []string `yaml:"synonyms"`
	Keywords         []string `yaml:"keywords"`
	Priority         int      `yaml:"priority"`
	ExcludeFromTrend bool     `yaml:"exclude_from_trend"`
	Fallback         bool     `yaml:"fallback"`
}

type document struct {
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`
}

// Taxonomy is a versioned, validated set of categories with exactly one
// fallback.
type Taxonomy struct {
	version    string
	categories []Category

	byKey     map[string]int // normalized key and slug -> index
	bySynonym map[string]int // normalized synonym -> index (first declaration wins)
	fallback  int
}

// New validates categories and builds the lookup tables. Synonyms and
// keywords are normalized and deduplicated; declaration order is kept.
func New(version string, categories []Category) (*Taxonomy, error) {
	if version == "" {
		return nil, fmt.Errorf("taxonomy: version is required")
	}
	if len(categories) < 2 {
		return nil, fmt.Errorf("taxonomy: at least one category besides the fallback is required")
	}

	t := &Taxonomy{
		version:    version,
		categories: make([]Category, len(categories)),
		byKey:      make(map[string]int, len(categories)*2),
		bySynonym:  make(map[string]int),
		fallback:   -1,
	}

	for i, c := range categories {
		if c.Key == "" || c.Slug == "" {
			return nil, fmt.Errorf("taxonomy: category #%d: key and slug are required", i)
		}
		for _, name := range []string{domain.NormalizeText(c.Key), domain.NormalizeText(c.Slug)} {
			if prev, ok := t.byKey[name]; ok && prev != i {
				return nil, fmt.Errorf("taxonomy: duplicate key or slug %q", name)
			}
			t.byKey[name] = i
		}

		if c.Fallback {
			if t.fallback >= 0 {
				return nil, fmt.Errorf("taxonomy: more than one fallback category (%q, %q)",
					categories[t.fallback].Key, c.Key)
			}
			if !c.ExcludeFromTrend {
				return nil, fmt.Errorf("taxonomy: fallback %q must be excluded from trends", c.Key)
			}
			t.fallback = i
		}

		c.Synonyms = normalizeTerms(c.Synonyms)
		c.Keywords = normalizeTerms(c.Keywords)
		for _, s := range c.Synonyms {
			if _, taken := t.bySynonym[s]; !taken {
				t.bySynonym[s] = i
			}
		}
		t.categories[i] = c
	}

	if t.fallback < 0 {
		return nil, fmt.Errorf("taxonomy: no fallback category")
	}
	fb := t.categories[t.fallback]
	for _, c := range t.categories {
		if !c.Fallback && c.Priority <= fb.Priority {
			return nil, fmt.Errorf("taxonomy: fallback %q must have the lowest priority (%q has %d)",
				fb.Key, c.Key, c.Priority)
		}
	}

	return t, nil
}

// Load parses a YAML taxonomy document.
func Load(r io.Reader) (*Taxonomy, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("taxonomy: decode yaml: %w", err)
	}
	return New(doc.Version, doc.Categories)
}

// LoadFile reads a taxonomy from path. An empty path yields Default().
func LoadFile(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded taxonomy. It panics if the embedded document
// is invalid, which is a build defect.
func Default() *Taxonomy {
	var doc document
	if err := yaml.Unmarshal(defaultYAML, &doc); err != nil {
		panic(fmt.Sprintf("taxonomy: embedded default.yaml: %v", err))
	}
	t, err := New(doc.Version, doc.Categories)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded default.yaml: %v", err))
	}
	return t
}

// Version identifies the taxonomy revision.
func (t *Taxonomy) Version() string { return t.version }

// Categories returns the categories in declaration order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		c.Synonyms = slices.Clone(c.Synonyms)
		c.Keywords = slices.Clone(c.Keywords)
		out[i] = c
	}
	return out
}

// Fallback returns the fallback category.
func (t *Taxonomy) Fallback() Category { return t.categories[t.fallback] }

// FallbackKey returns the fallback category key.
func (t *Taxonomy) FallbackKey() string { return t.categories[t.fallback].Key }

// Lookup finds a category by key or slug, case-insensitively.
func (t *Taxonomy) Lookup(keyOrSlug string) (Category, bool) {
	i, ok := t.byKey[domain.NormalizeText(keyOrSlug)]
	if !ok {
		return Category{}, false
	}
	return t.categories[i], true
}

// IsCanonical reports whether key is exactly a canonical category key.
func (t *Taxonomy) IsCanonical(key string) bool {
	i, ok := t.byKey[domain.NormalizeText(key)]
	return ok && t.categories[i].Key == key
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		n := domain.NormalizeText(term)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
