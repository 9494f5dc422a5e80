package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

const maxPageBytes = 2 << 20

// PartFetcher looks a part up on the retailer's website. A missing page is
// (nil, nil).
type PartFetcher interface {
	FetchPart(ctx context.Context, partNumber string) (*domain.Part, error)
}

// LiveLookup reads part pages from the retailer's website.
type LiveLookup struct {
	baseURL string
	client  *http.Client
}

var _ PartFetcher = (*LiveLookup)(nil)

func NewLiveLookup(baseURL string, timeout time.Duration) *LiveLookup {
	return NewLiveLookupWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewLiveLookupWithClient uses the given client, which must carry its own timeout.
func NewLiveLookupWithClient(baseURL string, client *http.Client) *LiveLookup {
	return &LiveLookup{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (l *LiveLookup) pageURL(partNumber string) string {
	return fmt.Sprintf("%s/%s.htm", l.baseURL, partNumber)
}

func (l *LiveLookup) FetchPart(ctx context.Context, partNumber string) (*domain.Part, error) {
	url := l.pageURL(partNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "partsdesk/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	page := scrapePartPage(doc)
	if page.name == "" {
		return nil, nil
	}
	return &domain.Part{
		PartNumber: partNumber,
		Name:       page.name,
		Price:      page.price,
		ImageURL:   page.image,
		BuyLink:    url,
		InStock:    true,
	}, nil
}

type partPage struct {
	name  string
	price string
	image string
}

// scrapePartPage takes the first <h1>, the itemprop=price value and the
// og:image meta tag.
func scrapePartPage(doc *html.Node) partPage {
	var page partPage
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "h1" && page.name == "":
				page.name = strings.Join(strings.Fields(textOf(n)), " ")
			case attr(n, "itemprop") == "price" && page.price == "":
				price := attr(n, "content")
				if price == "" {
					price = strings.TrimSpace(textOf(n))
				}
				if price != "" && !strings.HasPrefix(price, "$") {
					price = "$" + price
				}
				page.price = price
			case n.Data == "meta" && attr(n, "property") == "og:image" && page.image == "":
				page.image = attr(n, "content")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
