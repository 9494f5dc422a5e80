package domain

import "strings"

// ProductReference is the catalog-backed summary attached to a turn as a card.
type ProductReference struct {
	PartNumber string `json:"partNumber"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	ImageURL   string `json:"imageUrl"`
	BuyLink    string `json:"buyLink,omitempty"`
}

// Appliance is a supported appliance category.
type Appliance string

const (
	ApplianceRefrigerator Appliance = "refrigerator"
	ApplianceDishwasher   Appliance = "dishwasher"
)

// Part is the full catalog record for a part.
type Part struct {
	PartNumber    string
	Name          string
	Price         string
	ImageURL      string
	BuyLink       string
	Category      Appliance
	Brand         string
	Description   string
	InStock       bool
	Compatibility []string
}

// Reference converts a part into the card value object.
func (p *Part) Reference() ProductReference {
	return ProductReference{
		PartNumber: p.PartNumber,
		Name:       p.Name,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		BuyLink:    p.BuyLink,
	}
}

// FitKind describes how a part relates to a model number.
type FitKind int

const (
	FitNone FitKind = iota
	// FitSeries means the model shares the first six characters with a listed
	// model. It is an approximation pending product-team confirmation.
	FitSeries
	FitExact
)

// SeriesPrefixLen is the prefix length used for FitSeries.
const SeriesPrefixLen = 6

// FitFor reports how well the part fits the given model number.
func (p *Part) FitFor(model string) FitKind {
	model = strings.ToUpper(strings.TrimSpace(model))
	if model == "" {
		return FitNone
	}
	for _, m := range p.Compatibility {
		if strings.EqualFold(m, model) {
			return FitExact
		}
	}
	if len(model) < SeriesPrefixLen {
		return FitNone
	}
	prefix := model[:SeriesPrefixLen]
	for _, m := range p.Compatibility {
		if strings.HasPrefix(strings.ToUpper(m), prefix) {
			return FitSeries
		}
	}
	return FitNone
}

// GuideStep is one step of an installation guide.
type GuideStep struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Warning     string `yaml:"warning,omitempty"`
}

// InstallationGuide describes how to fit a part.
type InstallationGuide struct {
	PartNumber    string
	PartName      string
	Difficulty    string
	EstimatedTime string
	Tools         []string
	Steps         []GuideStep
	Tips          []string
	SafetyNotes   []string
	VideoURL      string
}
