// Package cooccurrence models a tagged corpus as a directed word
// co-occurrence graph.  Each distinct word is one node carrying its
// Positional Reference Information (every sentence id and position it was
// seen at) and two derived flags: valid start and valid end.
package cooccurrence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// Occurrence records that a word appeared at Position within SentenceID.
type Occurrence struct {
	SentenceID int `json:"sid"`
	Position   int `json:"pid"`
}

// String renders the occurrence as "sid:pid".
func (o Occurrence) String() string {
	return strconv.Itoa(o.SentenceID) + ":" + strconv.Itoa(o.Position)
}

// ParseOccurrence parses the "sid:pid" form produced by String.
func ParseOccurrence(s string) (Occurrence, error) {
	sid, pid, ok := strings.Cut(s, ":")
	if !ok {
		return Occurrence{}, fmt.Errorf("occurrence %q: missing ':'", s)
	}
	si, err := strconv.Atoi(sid)
	if err != nil {
		return Occurrence{}, fmt.Errorf("occurrence %q: sentence id: %w", s, err)
	}
	pi, err := strconv.Atoi(pid)
	if err != nil {
		return Occurrence{}, fmt.Errorf("occurrence %q: position: %w", s, err)
	}
	return Occurrence{SentenceID: si, Position: pi}, nil
}

// FormatPRI renders occurrences in the "sid:pid" list form.
func FormatPRI(occ []Occurrence) []string {
	out := make([]string, len(occ))
	for i, o := range occ {
		out[i] = o.String()
	}
	return out
}

// ParsePRI is the inverse of FormatPRI.
func ParsePRI(pri []string) ([]Occurrence, error) {
	out := make([]Occurrence, 0, len(pri))
	for _, s := range pri {
		o, err := ParseOccurrence(s)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// Node is one distinct word of the corpus.  The valid-start and valid-end
// flags are derived from the tag and occurrences and are only written by the
// owning Graph.
type Node struct {
	word        string
	tag         pos.Tag
	occurrences []Occurrence
	validStart  bool
	validEnd    bool
}

func (n *Node) Word() string     { return n.word }
func (n *Node) Tag() pos.Tag     { return n.tag }
func (n *Node) ValidStart() bool { return n.validStart }
func (n *Node) ValidEnd() bool   { return n.validEnd }

// Occurrences returns a copy of the node's occurrences in ingestion order.
func (n *Node) Occurrences() []Occurrence {
	out := make([]Occurrence, len(n.occurrences))
	copy(out, n.occurrences)
	return out
}

// NodeSnapshot is the exported, serialisable view of a Node.
type NodeSnapshot struct {
	Word       string   `json:"word"`
	Tag        pos.Tag  `json:"tag"`
	PRI        []string `json:"pri"`
	ValidStart bool     `json:"vsn"`
	ValidEnd   bool     `json:"ven"`
}

// Snapshot returns the serialisable view of n.
func (n *Node) Snapshot() NodeSnapshot {
	return NodeSnapshot{
		Word:       n.word,
		Tag:        n.tag,
		PRI:        FormatPRI(n.occurrences),
		ValidStart: n.validStart,
		ValidEnd:   n.validEnd,
	}
}

//Personal.AI order the ending
