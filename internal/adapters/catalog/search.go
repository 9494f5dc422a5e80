package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

type searchDoc struct {
	PartNumber  string `json:"partNumber"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Models      string `json:"models"`
}

// searchIndex is an in-memory bleve index keyed by part number.
type searchIndex struct {
	index bleve.Index
}

func newSearchIndex(parts []*domain.Part) (*searchIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	batch := idx.NewBatch()
	for _, p := range parts {
		doc := searchDoc{
			PartNumber:  p.PartNumber,
			Name:        p.Name,
			Category:    string(p.Category),
			Brand:       p.Brand,
			Description: p.Description,
			Models:      strings.Join(p.Compatibility, " "),
		}
		if err := batch.Index(p.PartNumber, doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("indexing %s: %w", p.PartNumber, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return &searchIndex{index: idx}, nil
}

// Search returns matching part numbers ordered by score.
func (s *searchIndex) Search(ctx context.Context, query string, size int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" || size <= 0 {
		return nil, nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), size, 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (s *searchIndex) Close() error {
	return s.index.Close()
}
