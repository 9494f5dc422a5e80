package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// DefaultSuggestionLimit caps the parts returned by Matcher.Suggest.
const DefaultSuggestionLimit = 3

var fuzzyStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"need": true, "want": true, "part": true, "parts": true, "have": true, "what": true,
	"replace": true, "replacement": true, "broken": true, "working": true,
	// appliance names are left to the popular fallback
	"dishwasher": true, "refrigerator": true, "fridge": true,
}

// Matcher suggests parts for free text: curated phrases first, then fuzzy
// matches over part names, then popular parts for the named appliance.
type Matcher struct {
	catalog  domain.Catalog
	keywords []keywordSeed
	popular  map[domain.Appliance][]string
	names    []string
	numbers  []string
}

// NewMatcher builds a matcher whose suggestions resolve through cat. Part
// names for fuzzy matching come from static.
func NewMatcher(cat domain.Catalog, static *StaticCatalog, seed *Seed) *Matcher {
	m := &Matcher{
		catalog:  cat,
		keywords: seed.Keywords,
		popular:  make(map[domain.Appliance][]string, len(seed.Popular)),
	}
	for k, parts := range seed.Popular {
		m.popular[domain.Appliance(k)] = parts
	}
	for _, p := range static.All() {
		m.names = append(m.names, strings.ToLower(p.Name))
		m.numbers = append(m.numbers, p.PartNumber)
	}
	return m
}

// Suggest returns up to limit catalog parts for the text; limit <= 0 means
// DefaultSuggestionLimit. Numbers the catalog cannot resolve are skipped.
func (m *Matcher) Suggest(ctx context.Context, text string, limit int) ([]*domain.Part, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return nil, nil
	}

	candidates := m.keywordMatches(q)
	if len(candidates) == 0 {
		candidates = m.fuzzyMatches(q)
	}
	if len(candidates) == 0 {
		candidates = m.popularFor(q)
	}

	var out []*domain.Part
	seen := map[string]bool{}
	for _, pn := range candidates {
		if len(out) == limit {
			break
		}
		if seen[pn] {
			continue
		}
		seen[pn] = true
		p, err := m.catalog.GetPartData(ctx, pn)
		if err != nil {
			return out, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Matcher) keywordMatches(q string) []string {
	var out []string
	for _, kw := range m.keywords {
		if strings.Contains(q, kw.Term) {
			out = append(out, kw.Parts...)
		}
	}
	return out
}

// fuzzyMatches ranks part names by how many significant query words they
// match, then by summed fuzzy score.
func (m *Matcher) fuzzyMatches(q string) []string {
	type rank struct{ hits, score int }
	ranks := map[int]*rank{}
	for _, tok := range strings.FieldsFunc(q, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(tok) < 4 || fuzzyStopwords[tok] {
			continue
		}
		for _, match := range fuzzy.Find(tok, m.names) {
			if !compact(match, tok) && !strings.Contains(m.names[match.Index], tok) {
				continue
			}
			r := ranks[match.Index]
			if r == nil {
				r = &rank{}
				ranks[match.Index] = r
			}
			r.hits++
			r.score += match.Score
		}
	}
	if len(ranks) == 0 {
		return nil
	}

	idx := make([]int, 0, len(ranks))
	for i := range ranks {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool {
		ra, rb := ranks[idx[a]], ranks[idx[b]]
		if ra.hits != rb.hits {
			return ra.hits > rb.hits
		}
		if ra.score != rb.score {
			return ra.score > rb.score
		}
		return idx[a] < idx[b]
	})
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.numbers[i])
	}
	return out
}

// compact rejects hits scattered over the whole name, so "pump" does not
// match a name that merely contains p, u, m and p somewhere.
func compact(match fuzzy.Match, tok string) bool {
	n := len(match.MatchedIndexes)
	if n == 0 {
		return false
	}
	return match.MatchedIndexes[n-1]-match.MatchedIndexes[0] <= len(tok)+1
}

func (m *Matcher) popularFor(q string) []string {
	switch {
	case strings.Contains(q, "dishwasher"):
		return m.popular[domain.ApplianceDishwasher]
	case strings.Contains(q, "refrigerator"), strings.Contains(q, "fridge"):
		return m.popular[domain.ApplianceRefrigerator]
	}
	return nil
}
