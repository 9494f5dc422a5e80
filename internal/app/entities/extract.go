// Package entities pulls part, model, order and transaction identifiers out of free text.
package entities

import (
	"regexp"
	"strings"
)

var (
	partNumberRe       = regexp.MustCompile(`(?i)\bPS\d+`)
	strictPartNumberRe = regexp.MustCompile(`(?i)\bPS\d{8,}`)
	bareNumberRe       = regexp.MustCompile(`(?i)^\s*PS\d+\s*$`)
	modelNumberRe      = regexp.MustCompile(`(?i)\b[A-Z]{2,}[0-9]{3,}[A-Z0-9]*\b`)
	orderNumberRe      = regexp.MustCompile(`\b\d{6}\b`)
	transactionIDRe    = regexp.MustCompile(`(?i)\bTXN\w+`)
)

// Entities is the per-turn extraction result. It is never persisted.
type Entities struct {
	PartNumbers   []string
	ModelNumbers  []string
	OrderNumber   string
	TransactionID string
}

// HasParts reports whether at least one part number was found.
func (e Entities) HasParts() bool { return len(e.PartNumbers) > 0 }

// HasModels reports whether at least one model number was found.
func (e Entities) HasModels() bool { return len(e.ModelNumbers) > 0 }

// Extract never fails; empty or malformed input yields empty collections.
func Extract(text string) Entities {
	var e Entities
	if strings.TrimSpace(text) == "" {
		return e
	}

	e.PartNumbers = PartNumbers(text)
	e.ModelNumbers = ModelNumbers(text)
	e.OrderNumber = orderNumberRe.FindString(text)
	e.TransactionID = strings.ToUpper(transactionIDRe.FindString(text))
	return e
}

// PartNumbers returns the distinct part numbers in text, uppercased, in order of appearance.
func PartNumbers(text string) []string {
	return uniqueUpper(partNumberRe.FindAllString(text, -1))
}

// ModelNumbers returns distinct model-number tokens. Tokens starting with PS
// are part numbers and tokens starting with TXN are transaction ids.
func ModelNumbers(text string) []string {
	var out []string
	for _, m := range modelNumberRe.FindAllString(text, -1) {
		up := strings.ToUpper(m)
		if strings.HasPrefix(up, "PS") || strings.HasPrefix(up, "TXN") {
			continue
		}
		out = append(out, up)
	}
	return uniqueUpper(out)
}

// IsBarePartNumber reports whether the whole message is a single part number.
func IsBarePartNumber(text string) bool {
	return bareNumberRe.MatchString(text)
}

// HistoryParts scans earlier turns for full-length part numbers, most recent first.
func HistoryParts(texts []string) []string {
	var found []string
	for i := len(texts) - 1; i >= 0; i-- {
		found = append(found, strictPartNumberRe.FindAllString(texts[i], -1)...)
	}
	return uniqueUpper(found)
}

func uniqueUpper(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
