// Package pos holds the coarse part-of-speech vocabulary consumed by the
// co-occurrence graph and the phrase templates.
package pos

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is a coarse part-of-speech category.  The zero value means "no tag".
type Tag uint8

const (
	Unknown Tag = iota
	Noun
	Verb
	Adjective
	Adverb
	Preposition
	To
	Punctuation
	Conjunction
	Other
)

var tagCodes = [...]string{
	Unknown:     "",
	Noun:        "nn",
	Verb:        "vb",
	Adjective:   "jj",
	Adverb:      "rb",
	Preposition: "in",
	To:          "to",
	Punctuation: "pp",
	Conjunction: "cc",
	Other:       "",
}

// symbols encode each tag as one rune so tag sequences can be matched with
// regular expressions.  Other and Unknown share no symbol with a template tag.
var symbols = [...]rune{
	Unknown:     '?',
	Noun:        'n',
	Verb:        'v',
	Adjective:   'j',
	Adverb:      'r',
	Preposition: 'i',
	To:          't',
	Punctuation: 'p',
	Conjunction: 'c',
	Other:       'x',
}

var codeToTag = map[string]Tag{
	"nn": Noun,
	"vb": Verb,
	"jj": Adjective,
	"rb": Adverb,
	"in": Preposition,
	"to": To,
	"pp": Punctuation,
	"cc": Conjunction,
}

// String returns the two-letter code, or "other"/"unknown" for the
// uncategorised values.
func (t Tag) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case Other:
		return "other"
	}
	if int(t) < len(tagCodes) {
		return tagCodes[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// Symbol returns the single-rune encoding of t.
func (t Tag) Symbol() rune {
	if int(t) < len(symbols) {
		return symbols[t]
	}
	return '?'
}

// Valid reports whether t is a real tag.
func (t Tag) Valid() bool { return t > Unknown && t <= Other }

// IsBoundary reports whether t marks a phrase boundary (punctuation or
// coordinating conjunction).
func (t Tag) IsBoundary() bool { return t == Punctuation || t == Conjunction }

// ParseTag normalises a tagger code to a Tag.  Codes are lowercased and
// truncated to their first two letters ("NNS" → nn, "VBD" → vb).  The empty
// string yields Unknown; any other unrecognised code yields Other.
func ParseTag(code string) Tag {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Unknown
	}
	if len(code) > 2 {
		code = code[:2]
	}
	if t, ok := codeToTag[code]; ok {
		return t
	}
	return Other
}

// MarshalJSON encodes the tag as its string form.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts any code understood by ParseTag plus "other".
func (t *Tag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "unknown":
		*t = Unknown
	case "other":
		*t = Other
	default:
		*t = ParseTag(s)
	}
	return nil
}

// Token is one tagged word in sentence order.
type Token struct {
	Word string `json:"word"`
	Tag  Tag    `json:"tag"`
}

// NewToken lowercases word and pairs it with tag.
func NewToken(word string, tag Tag) Token {
	return Token{Word: strings.ToLower(word), Tag: tag}
}

// Symbols encodes a tag sequence as a string of Symbol runes.
func Symbols(tags []Tag) string {
	var sb strings.Builder
	sb.Grow(len(tags))
	for _, t := range tags {
		sb.WriteRune(t.Symbol())
	}
	return sb.String()
}

//Personal.AI order the ending
