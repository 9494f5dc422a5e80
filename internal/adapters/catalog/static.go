package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

// StaticCatalog serves parts from the seed data. It is safe for concurrent
// use; nothing is mutated after construction.
type StaticCatalog struct {
	parts   map[string]*domain.Part
	order   []string
	aliases map[string]string
	search  *searchIndex
}

var _ domain.Catalog = (*StaticCatalog)(nil)

// NewStaticCatalog builds the catalog and its search index from a seed.
func NewStaticCatalog(seed *Seed) (*StaticCatalog, error) {
	c := &StaticCatalog{
		parts:   make(map[string]*domain.Part, len(seed.Parts)),
		aliases: make(map[string]string, len(seed.Aliases)),
	}
	for _, ps := range seed.Parts {
		p := ps.toPart()
		c.parts[p.PartNumber] = p
		c.order = append(c.order, p.PartNumber)
	}
	for alias, target := range seed.Aliases {
		c.aliases[normalizePartNumber(alias)] = normalizePartNumber(target)
	}

	idx, err := newSearchIndex(c.All())
	if err != nil {
		return nil, fmt.Errorf("building search index: %w", err)
	}
	c.search = idx
	return c, nil
}

// NewDefaultStaticCatalog loads the embedded seed.
func NewDefaultStaticCatalog() (*StaticCatalog, error) {
	seed, err := DefaultSeed()
	if err != nil {
		return nil, err
	}
	return NewStaticCatalog(seed)
}

// Close releases the search index.
func (c *StaticCatalog) Close() error {
	return c.search.Close()
}

// Canonical resolves aliases and case. Unknown numbers are returned normalized.
func (c *StaticCatalog) Canonical(partNumber string) string {
	pn := normalizePartNumber(partNumber)
	if target, ok := c.aliases[pn]; ok {
		return target
	}
	return pn
}

func (c *StaticCatalog) lookup(partNumber string) *domain.Part {
	return c.parts[c.Canonical(partNumber)]
}

// All returns every part in seed order.
func (c *StaticCatalog) All() []*domain.Part {
	out := make([]*domain.Part, 0, len(c.order))
	for _, pn := range c.order {
		out = append(out, clonePart(c.parts[pn]))
	}
	return out
}

func (c *StaticCatalog) GetPartData(_ context.Context, partNumber string) (*domain.Part, error) {
	return clonePart(c.lookup(partNumber)), nil
}

// FindCompatibleParts matches model numbers case-insensitively by substring,
// so a partial model number still finds its parts.
func (c *StaticCatalog) FindCompatibleParts(_ context.Context, modelNumber string) ([]*domain.Part, error) {
	model := strings.ToUpper(strings.TrimSpace(modelNumber))
	if model == "" {
		return nil, nil
	}
	var out []*domain.Part
	for _, pn := range c.order {
		p := c.parts[pn]
		for _, m := range p.Compatibility {
			if strings.Contains(m, model) {
				out = append(out, clonePart(p))
				break
			}
		}
	}
	return out, nil
}

func (c *StaticCatalog) GetPartsByCategory(_ context.Context, category domain.Appliance) ([]*domain.Part, error) {
	var out []*domain.Part
	for _, pn := range c.order {
		if p := c.parts[pn]; p.Category == category {
			out = append(out, clonePart(p))
		}
	}
	return out, nil
}

// SearchParts runs a full text query over numbers, names, descriptions and
// compatible models, best match first.
func (c *StaticCatalog) SearchParts(ctx context.Context, query string) ([]*domain.Part, error) {
	ids, err := c.search.Search(ctx, query, len(c.order))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Part, 0, len(ids))
	for _, id := range ids {
		if p := c.parts[id]; p != nil {
			out = append(out, clonePart(p))
		}
	}
	return out, nil
}
