package catalog_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/PabloGalante/partsdesk/internal/adapters/catalog"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStatic(t *testing.T) (*catalog.StaticCatalog, *catalog.Seed) {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	c, err := catalog.NewStaticCatalog(seed)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, seed
}

func partNumbers(parts []*domain.Part) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.PartNumber)
	}
	return out
}

func TestParseSeedRejectsBrokenData(t *testing.T) {
	_, err := catalog.ParseSeed([]byte("parts:\n  - part_number: PS1\n    name: A\n  - part_number: ps1\n    name: B\n"))
	assert.ErrorContains(t, err, "duplicate part PS1")

	_, err = catalog.ParseSeed([]byte("parts:\n  - part_number: PS1\n    name: A\naliases:\n  PS2: PS3\n"))
	assert.ErrorContains(t, err, "unknown part PS3")

	_, err = catalog.ParseSeed([]byte("parts: [\n"))
	assert.Error(t, err)
}

func TestStaticCatalogGetPartData(t *testing.T) {
	ctx := context.Background()
	c, _ := newStatic(t)

	p, err := c.GetPartData(ctx, "ps11752778")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Refrigerator Door Shelf Bin", p.Name)
	assert.Equal(t, "$45.07", p.Price)
	assert.Equal(t, "https://www.partselect.com/PS11752778-Whirlpool-WPW10321304-Refrigerator-Door-Bin.htm", p.BuyLink)

	alias, err := c.GetPartData(ctx, "PS12752778")
	require.NoError(t, err)
	require.NotNil(t, alias)
	assert.Equal(t, "PS11752778", alias.PartNumber)

	filter, err := c.GetPartData(ctx, "PS2179605")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(catalog.SearchLinkFormat, "PS2179605"), filter.BuyLink)

	missing, err := c.GetPartData(ctx, "PS00000001")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStaticCatalogReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c, _ := newStatic(t)

	p, err := c.GetPartData(ctx, "PS11756692")
	require.NoError(t, err)
	p.Name = "changed"
	p.Compatibility[0] = "changed"

	again, err := c.GetPartData(ctx, "PS11756692")
	require.NoError(t, err)
	assert.Equal(t, "Dishwasher Pump and Motor Assembly", again.Name)
	assert.Equal(t, "WDT780SAEM1", again.Compatibility[0])
}

func TestStaticCatalogFindCompatibleParts(t *testing.T) {
	ctx := context.Background()
	c, _ := newStatic(t)

	parts, err := c.FindCompatibleParts(ctx, "wdt780saem1")
	require.NoError(t, err)
	got := partNumbers(parts)
	assert.Contains(t, got, "PS11756692")
	assert.Contains(t, got, "PS11746240")
	assert.Contains(t, got, "PS11753379")
	assert.NotContains(t, got, "PS2179605")

	partial, err := c.FindCompatibleParts(ctx, "GI15NDX")
	require.NoError(t, err)
	assert.Contains(t, partNumbers(partial), "PS2179605")

	none, err := c.FindCompatibleParts(ctx, "ZZZ999")
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := c.FindCompatibleParts(ctx, " ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStaticCatalogGetPartsByCategory(t *testing.T) {
	ctx := context.Background()
	c, _ := newStatic(t)

	parts, err := c.GetPartsByCategory(ctx, domain.ApplianceDishwasher)
	require.NoError(t, err)
	require.NotEmpty(t, parts)
	for _, p := range parts {
		assert.Equal(t, domain.ApplianceDishwasher, p.Category, p.PartNumber)
	}
}

func TestStaticCatalogSearchParts(t *testing.T) {
	ctx := context.Background()
	c, _ := newStatic(t)

	byNumber, err := c.SearchParts(ctx, "PS2179605")
	require.NoError(t, err)
	require.NotEmpty(t, byNumber)
	assert.Equal(t, "PS2179605", byNumber[0].PartNumber)

	byName, err := c.SearchParts(ctx, "drain hose")
	require.NoError(t, err)
	require.NotEmpty(t, byName)
	assert.Equal(t, "PS11746240", byName[0].PartNumber)

	byModel, err := c.SearchParts(ctx, "KDTE334GPS0")
	require.NoError(t, err)
	assert.Contains(t, partNumbers(byModel), "PS356593")

	blank, err := c.SearchParts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestMatcherSuggest(t *testing.T) {
	ctx := context.Background()
	c, seed := newStatic(t)
	m := catalog.NewMatcher(c, c, seed)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"curated phrase", "My dishwasher not draining at all", []string{"PS11753379", "PS11746240"}},
		{"phrases accumulate up to the limit", "whirlpool ice maker motor", []string{"PS12584610", "PS733947"}},
		{"fuzzy over part names", "looking for a lower spray arm", []string{"PS11747979", "PS356593"}},
		{"popular for appliance", "something for my dishwasher", []string{"PS11757388", "PS9495545", "PS11748244"}},
		{"nothing", "hello there", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := m.Suggest(ctx, tt.text, 0)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, parts)
				return
			}
			assert.Equal(t, tt.want, partNumbers(parts))
		})
	}
}

func TestMatcherSuggestRespectsLimit(t *testing.T) {
	c, seed := newStatic(t)
	m := catalog.NewMatcher(c, c, seed)

	parts, err := m.Suggest(context.Background(), "dishwasher pump", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"PS11756692"}, partNumbers(parts))
}

func TestGuideStore(t *testing.T) {
	ctx := context.Background()
	c, seed := newStatic(t)
	guides := catalog.NewGuideStore(c, seed)

	bin, err := guides.GetInstallationGuide(ctx, "PS11752778")
	require.NoError(t, err)
	require.NotNil(t, bin)
	assert.Equal(t, "Easy", bin.Difficulty)
	assert.Equal(t, "Under 5 minutes", bin.EstimatedTime)
	assert.Len(t, bin.Steps, 4)

	pump, err := guides.GetInstallationGuide(ctx, "ps11756692")
	require.NoError(t, err)
	require.Len(t, pump.Steps, 6)
	assert.Equal(t, "Always disconnect power before servicing appliances", pump.Steps[0].Warning)

	generic, err := guides.GetInstallationGuide(ctx, "PS2179605")
	require.NoError(t, err)
	require.NotNil(t, generic)
	assert.Equal(t, "Refrigerator Water Filter EDR1RXD1", generic.PartName)
	assert.Equal(t, "Moderate", generic.Difficulty)
	assert.Len(t, generic.Steps, 5)

	aliased, err := guides.GetInstallationGuide(ctx, "PS12752778")
	require.NoError(t, err)
	assert.Equal(t, "PS11752778", aliased.PartNumber)

	unknown, err := guides.GetInstallationGuide(ctx, "PS00000001")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

const partPage = `<html><head>
<meta property="og:image" content="https://img.example.com/PS11752778.jpg">
</head><body>
<h1 class="title">  Refrigerator   Door Bin WPW10321304 </h1>
<span itemprop="price" content="47.10">$47.10</span>
</body></html>`

func newPartSite(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/PS11752778.htm":
			_, _ = w.Write([]byte(partPage))
		case "/PS2179605.htm":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/PS99999999.htm":
			_, _ = w.Write([]byte(`<html><body><h1>Site Only Part</h1></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLiveLookupFetchPart(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	srv := newPartSite(t, &hits)
	live := catalog.NewLiveLookupWithClient(srv.URL+"/", srv.Client())

	p, err := live.FetchPart(ctx, "PS11752778")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Refrigerator Door Bin WPW10321304", p.Name)
	assert.Equal(t, "$47.10", p.Price)
	assert.Equal(t, "https://img.example.com/PS11752778.jpg", p.ImageURL)
	assert.Equal(t, srv.URL+"/PS11752778.htm", p.BuyLink)

	missing, err := live.FetchPart(ctx, "PS00000001")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = live.FetchPart(ctx, "PS2179605")
	assert.Error(t, err)
}

func TestLiveCatalogMergesAndCaches(t *testing.T) {
	ctx := context.Background()
	static, _ := newStatic(t)
	var hits atomic.Int32
	srv := newPartSite(t, &hits)
	c := catalog.NewLiveCatalog(static, catalog.NewLiveLookupWithClient(srv.URL, srv.Client()), 16, time.Minute)

	p, err := c.GetPartData(ctx, "PS11752778")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "$47.10", p.Price)
	assert.Equal(t, domain.ApplianceRefrigerator, p.Category)
	assert.Contains(t, p.Compatibility, "WRF535SWHZ00")

	_, err = c.GetPartData(ctx, "ps11752778")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestLiveCatalogFallsBackToStatic(t *testing.T) {
	ctx := context.Background()
	static, _ := newStatic(t)
	var hits atomic.Int32
	srv := newPartSite(t, &hits)
	c := catalog.NewLiveCatalog(static, catalog.NewLiveLookupWithClient(srv.URL, srv.Client()), 16, time.Minute)

	failing, err := c.GetPartData(ctx, "PS2179605")
	require.NoError(t, err)
	require.NotNil(t, failing)
	assert.Equal(t, "$49.99", failing.Price)

	notOnSite, err := c.GetPartData(ctx, "PS11756692")
	require.NoError(t, err)
	require.NotNil(t, notOnSite)
	assert.Equal(t, "$164.95", notOnSite.Price)

	siteOnly, err := c.GetPartData(ctx, "PS99999999")
	require.NoError(t, err)
	require.NotNil(t, siteOnly)
	assert.Equal(t, "Site Only Part", siteOnly.Name)

	nowhere, err := c.GetPartData(ctx, "PS00000001")
	require.NoError(t, err)
	assert.Nil(t, nowhere)
}

type slowFetcher struct {
	calls   atomic.Int32
	release chan struct{}
}

func (f *slowFetcher) FetchPart(_ context.Context, pn string) (*domain.Part, error) {
	f.calls.Add(1)
	<-f.release
	return &domain.Part{PartNumber: pn, Name: "Fresh name"}, nil
}

func TestLiveCatalogDeduplicatesConcurrentLookups(t *testing.T) {
	ctx := context.Background()
	static, _ := newStatic(t)
	f := &slowFetcher{release: make(chan struct{})}
	c := catalog.NewLiveCatalog(static, f, 16, time.Minute)

	var wg sync.WaitGroup
	names := make([]string, 8)
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.GetPartData(ctx, "PS11746240")
			if err == nil && p != nil {
				names[i] = p.Name
			}
		}(i)
	}
	// give the goroutines time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	for _, n := range names {
		assert.Equal(t, "Fresh name", n)
	}
	assert.LessOrEqual(t, f.calls.Load(), int32(8))
	assert.GreaterOrEqual(t, f.calls.Load(), int32(1))
}
