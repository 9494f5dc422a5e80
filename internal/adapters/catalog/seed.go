package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/partsdesk/internal/domain"
)

//go:embed data/catalog.yaml
var defaultSeed []byte

// SearchLinkFormat builds the buy link used when a part has none of its own.
const SearchLinkFormat = "https://www.partselect.com/api/search/?searchterm=%s"

type partSeed struct {
	PartNumber    string   `yaml:"part_number"`
	Name          string   `yaml:"name"`
	Price         string   `yaml:"price"`
	ImageURL      string   `yaml:"image_url"`
	BuyLink       string   `yaml:"buy_link"`
	Category      string   `yaml:"category"`
	Brand         string   `yaml:"brand"`
	Description   string   `yaml:"description"`
	OutOfStock    bool     `yaml:"out_of_stock"`
	Compatibility []string `yaml:"compatibility"`
}

type keywordSeed struct {
	Term  string   `yaml:"term"`
	Parts []string `yaml:"parts"`
}

type guideSeed struct {
	Difficulty    string             `yaml:"difficulty"`
	EstimatedTime string             `yaml:"estimated_time"`
	Tools         []string           `yaml:"tools"`
	Steps         []domain.GuideStep `yaml:"steps"`
	Tips          []string           `yaml:"tips"`
	SafetyNotes   []string           `yaml:"safety_notes"`
	VideoURL      string             `yaml:"video_url"`
}

// Seed is the decoded catalog data file.
type Seed struct {
	Parts    []partSeed           `yaml:"parts"`
	Aliases  map[string]string    `yaml:"aliases"`
	Keywords []keywordSeed        `yaml:"keywords"`
	Popular  map[string][]string  `yaml:"popular"`
	Guides   map[string]guideSeed `yaml:"guides"`
}

// DefaultSeed decodes the catalog data compiled into the binary.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// ParseSeed decodes and checks a catalog data file.
func ParseSeed(raw []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding catalog seed: %w", err)
	}

	known := make(map[string]bool, len(s.Parts))
	for i := range s.Parts {
		p := &s.Parts[i]
		p.PartNumber = normalizePartNumber(p.PartNumber)
		if p.PartNumber == "" || p.Name == "" {
			return nil, fmt.Errorf("catalog seed: part %d has no number or name", i)
		}
		if known[p.PartNumber] {
			return nil, fmt.Errorf("catalog seed: duplicate part %s", p.PartNumber)
		}
		known[p.PartNumber] = true
	}
	for alias, target := range s.Aliases {
		if !known[normalizePartNumber(target)] {
			return nil, fmt.Errorf("catalog seed: alias %s points at unknown part %s", alias, target)
		}
	}
	return &s, nil
}

func (p partSeed) toPart() *domain.Part {
	buyLink := p.BuyLink
	if buyLink == "" {
		buyLink = fmt.Sprintf(SearchLinkFormat, p.PartNumber)
	}
	compat := make([]string, 0, len(p.Compatibility))
	for _, m := range p.Compatibility {
		compat = append(compat, strings.ToUpper(strings.TrimSpace(m)))
	}
	return &domain.Part{
		PartNumber:    p.PartNumber,
		Name:          p.Name,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		BuyLink:       buyLink,
		Category:      domain.Appliance(strings.ToLower(p.Category)),
		Brand:         p.Brand,
		Description:   p.Description,
		InStock:       !p.OutOfStock,
		Compatibility: compat,
	}
}

func normalizePartNumber(pn string) string {
	return strings.ToUpper(strings.TrimSpace(pn))
}

// clonePart copies p so callers cannot mutate catalog state.
func clonePart(p *domain.Part) *domain.Part {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Compatibility = append([]string(nil), p.Compatibility...)
	return &cp
}
