// Package phrase finds candidate opinion phrases in a co-occurrence graph and
// ranks them by cross-sentence positional consistency.
package phrase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// Element is one run of a template: at least Min consecutive-or-gapped words
// tagged Tag.  Min is 0 ("*") or 1 ("+").
type Element struct {
	Tag pos.Tag `json:"tag"`
	Min int     `json:"min"`
}

// Template is an ordered POS grammar over the interior of a path.  Words with
// other tags may appear between runs.
type Template struct {
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
}

// DefaultTemplates are the four built-in opinion grammars.
var DefaultTemplates = []Template{
	{Name: "nn+vb+jj+", Elements: []Element{{pos.Noun, 1}, {pos.Verb, 1}, {pos.Adjective, 1}}},
	{Name: "jj+to+vb+", Elements: []Element{{pos.Adjective, 1}, {pos.To, 1}, {pos.Verb, 1}}},
	{Name: "rb*jj+nn+", Elements: []Element{{pos.Adverb, 0}, {pos.Adjective, 1}, {pos.Noun, 1}}},
	{Name: "rb+in+nn+", Elements: []Element{{pos.Adverb, 1}, {pos.Preposition, 1}, {pos.Noun, 1}}},
}

// Pattern renders the template as an unanchored regular expression over
// pos.Symbols, e.g. "n+.*v+.*j+".
func (t Template) Pattern() string {
	parts := make([]string, 0, len(t.Elements))
	for _, e := range t.Elements {
		q := "+"
		if e.Min == 0 {
			q = "*"
		}
		parts = append(parts, regexp.QuoteMeta(string(e.Tag.Symbol()))+q)
	}
	return strings.Join(parts, ".*")
}

// AnchoredPattern is Pattern wrapped for whole-string matchers such as
// Cypher's =~ operator.
func (t Template) AnchoredPattern() string {
	return ".*" + t.Pattern() + ".*"
}

// Validate rejects templates that cannot be compiled into a matcher.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template without a name")
	}
	if len(t.Elements) == 0 {
		return fmt.Errorf("template %s has no elements", t.Name)
	}
	for i, e := range t.Elements {
		if !e.Tag.Valid() || e.Tag == pos.Other {
			return fmt.Errorf("template %s element %d: unsupported tag %s", t.Name, i, e.Tag)
		}
		if e.Min != 0 && e.Min != 1 {
			return fmt.Errorf("template %s element %d: min must be 0 or 1", t.Name, i)
		}
	}
	return nil
}

// TemplateSet is a compiled list of templates.
type TemplateSet struct {
	templates []Template
	patterns  []*regexp.Regexp
}

// CompileTemplates validates and compiles ts.
func CompileTemplates(ts []Template) (*TemplateSet, error) {
	set := &TemplateSet{}
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		re, err := regexp.Compile(t.Pattern())
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", t.Name, err)
		}
		set.templates = append(set.templates, t)
		set.patterns = append(set.patterns, re)
	}
	return set, nil
}

// Match returns the names of every template satisfied by tags, in table order.
func (s *TemplateSet) Match(tags []pos.Tag) []string {
	sym := pos.Symbols(tags)
	var names []string
	for i, re := range s.patterns {
		if re.MatchString(sym) {
			names = append(names, s.templates[i].Name)
		}
	}
	return names
}

// Templates returns the compiled templates in table order.
func (s *TemplateSet) Templates() []Template { return s.templates }

//Personal.AI order the ending
