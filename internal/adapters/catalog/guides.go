package catalog

import (
	"context"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

const defaultGuideKey = "default"

// GuideStore returns installation guides for catalog parts. Parts without a
// dedicated guide get the generic one; unknown parts get none.
type GuideStore struct {
	catalog domain.Catalog
	guides  map[string]guideSeed
}

var _ domain.GuideStore = (*GuideStore)(nil)

func NewGuideStore(cat domain.Catalog, seed *Seed) *GuideStore {
	guides := make(map[string]guideSeed, len(seed.Guides))
	for k, g := range seed.Guides {
		if k != defaultGuideKey {
			k = normalizePartNumber(k)
		}
		guides[k] = g
	}
	return &GuideStore{catalog: cat, guides: guides}
}

func (s *GuideStore) GetInstallationGuide(ctx context.Context, partNumber string) (*domain.InstallationGuide, error) {
	part, err := s.catalog.GetPartData(ctx, partNumber)
	if err != nil || part == nil {
		return nil, err
	}

	g, ok := s.guides[part.PartNumber]
	if !ok {
		if g, ok = s.guides[defaultGuideKey]; !ok {
			return nil, nil
		}
	}
	return &domain.InstallationGuide{
		PartNumber:    part.PartNumber,
		PartName:      part.Name,
		Difficulty:    g.Difficulty,
		EstimatedTime: g.EstimatedTime,
		Tools:         append([]string(nil), g.Tools...),
		Steps:         append([]domain.GuideStep(nil), g.Steps...),
		Tips:          append([]string(nil), g.Tips...),
		SafetyNotes:   append([]string(nil), g.SafetyNotes...),
		VideoURL:      g.VideoURL,
	}, nil
}
