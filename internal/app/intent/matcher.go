// Package intent classifies user messages with ordered keyword and pattern rules.
package intent

import (
	"regexp"
	"strings"
)

// Matcher is a predicate over lowercased message text.
type Matcher interface {
	Match(text string) bool
}

// Phrases matches when any phrase occurs as a substring.
type Phrases []string

func (p Phrases) Match(text string) bool {
	for _, s := range p {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// Words matches when any entry occurs bounded by non-letters, so "no" does
// not match "not" or "know".
type Words []string

func (w Words) Match(text string) bool {
	for _, s := range w {
		if containsWord(text, s) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for from := 0; from <= len(text)-len(word); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\'' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Pattern wraps a regular expression.
type Pattern struct{ Re *regexp.Regexp }

func (p Pattern) Match(text string) bool { return p.Re.MatchString(text) }

// Rx compiles expr into a Pattern, panicking on invalid input.
func Rx(expr string) Pattern { return Pattern{Re: regexp.MustCompile(expr)} }

// AllOf matches when every matcher matches.
type AllOf []Matcher

func (a AllOf) Match(text string) bool {
	for _, m := range a {
		if !m.Match(text) {
			return false
		}
	}
	return len(a) > 0
}

// AnyOf matches when at least one matcher matches.
type AnyOf []Matcher

func (a AnyOf) Match(text string) bool {
	for _, m := range a {
		if m.Match(text) {
			return true
		}
	}
	return false
}

// Not inverts a matcher.
type Not struct{ M Matcher }

func (n Not) Match(text string) bool { return !n.M.Match(text) }

// Func adapts a plain function.
type Func func(text string) bool

func (f Func) Match(text string) bool { return f(text) }

// Tag names the intent a rule assigns.
type Tag string

// Rule assigns Tag when When matches.
type Rule struct {
	Tag  Tag
	When Matcher
}

// RuleSet is evaluated in order; earlier rules take precedence.
type RuleSet []Rule

// First returns the tag of the first matching rule.
func (rs RuleSet) First(text string) (Tag, bool) {
	for _, r := range rs {
		if r.When.Match(text) {
			return r.Tag, true
		}
	}
	return "", false
}

// All returns the tags of every matching rule, in rule order.
func (rs RuleSet) All(text string) []Tag {
	var out []Tag
	for _, r := range rs {
		if r.When.Match(text) {
			out = append(out, r.Tag)
		}
	}
	return out
}

// Has reports whether any rule carrying tag matches.
func (rs RuleSet) Has(text string, tag Tag) bool {
	for _, r := range rs {
		if r.Tag == tag && r.When.Match(text) {
			return true
		}
	}
	return false
}
