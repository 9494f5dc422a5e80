package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/PabloGalante/partsdesk/internal/domain"
	"github.com/PabloGalante/partsdesk/internal/observability"
)

// LiveCatalog prefers fresh data from the website for single part lookups
// and falls back to the static catalog when the site misses or fails. Model,
// category and text queries are answered from static data.
type LiveCatalog struct {
	static  *StaticCatalog
	fetcher PartFetcher
	cache   *expirable.LRU[string, *domain.Part]
	group   singleflight.Group
}

var _ domain.Catalog = (*LiveCatalog)(nil)

func NewLiveCatalog(static *StaticCatalog, fetcher PartFetcher, cacheSize int, ttl time.Duration) *LiveCatalog {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	return &LiveCatalog{
		static:  static,
		fetcher: fetcher,
		cache:   expirable.NewLRU[string, *domain.Part](cacheSize, nil, ttl),
	}
}

func (c *LiveCatalog) GetPartData(ctx context.Context, partNumber string) (*domain.Part, error) {
	key := c.static.Canonical(partNumber)
	if key == "" {
		return nil, nil
	}
	if p, ok := c.cache.Get(key); ok {
		return clonePart(p), nil
	}

	static := c.static.lookup(key)

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetcher.FetchPart(ctx, key)
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("live part lookup failed, using static data",
			"part_number", key,
			"error", err,
		)
		return clonePart(static), nil
	}

	live, _ := v.(*domain.Part)
	merged := mergePart(static, live)
	if merged == nil {
		return nil, nil
	}
	c.cache.Add(key, merged)
	return clonePart(merged), nil
}

// mergePart overlays live page fields on the static record. Compatibility and
// category only exist in static data.
func mergePart(static, live *domain.Part) *domain.Part {
	switch {
	case live == nil:
		return clonePart(static)
	case static == nil:
		return clonePart(live)
	}
	out := clonePart(static)
	if live.Name != "" {
		out.Name = live.Name
	}
	if live.Price != "" {
		out.Price = live.Price
	}
	if live.ImageURL != "" {
		out.ImageURL = live.ImageURL
	}
	if live.BuyLink != "" {
		out.BuyLink = live.BuyLink
	}
	return out
}

func (c *LiveCatalog) FindCompatibleParts(ctx context.Context, modelNumber string) ([]*domain.Part, error) {
	return c.static.FindCompatibleParts(ctx, modelNumber)
}

func (c *LiveCatalog) GetPartsByCategory(ctx context.Context, category domain.Appliance) ([]*domain.Part, error) {
	return c.static.GetPartsByCategory(ctx, category)
}

func (c *LiveCatalog) SearchParts(ctx context.Context, query string) ([]*domain.Part, error) {
	return c.static.SearchParts(ctx, query)
}
