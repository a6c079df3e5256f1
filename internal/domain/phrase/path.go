package phrase

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// PathNode is one word of a candidate path with the data the scorer needs.
type PathNode struct {
	Word        string                    `json:"word"`
	Tag         pos.Tag                   `json:"tag"`
	Occurrences []cooccurrence.Occurrence `json:"occurrences"`
}

// CandidatePath is a matched path.  Length is the edge count.
type CandidatePath struct {
	Nodes     []PathNode `json:"nodes"`
	Length    int        `json:"length"`
	Templates []string   `json:"templates"`
}

// Words returns the path's words in order.
func (p CandidatePath) Words() []string {
	out := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Word
	}
	return out
}

// Tags returns the path's tags in order.
func (p CandidatePath) Tags() []pos.Tag {
	out := make([]pos.Tag, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Tag
	}
	return out
}

// Interior returns the nodes strictly between the endpoints.
func (p CandidatePath) Interior() []PathNode {
	if len(p.Nodes) < 3 {
		return nil
	}
	return p.Nodes[1 : len(p.Nodes)-1]
}

// Text joins the words with single spaces.
func (p CandidatePath) Text() string { return strings.Join(p.Words(), " ") }

// key identifies the node sequence.  Words never contain the separator.
func (p CandidatePath) key() string { return strings.Join(p.Words(), "\x1f") }

// ─────────────────────────────────────────────────────────────────────────────
// Query contract
// ─────────────────────────────────────────────────────────────────────────────

// Predicate selects the nodes a path may start or end at.
type Predicate string

const (
	PredicateValidStart Predicate = "vsn"
	PredicateValidEnd   Predicate = "ven"
)

// Holds evaluates p against n.
func (p Predicate) Holds(n *cooccurrence.Node) bool {
	switch p {
	case PredicateValidStart:
		return n.ValidStart()
	case PredicateValidEnd:
		return n.ValidEnd()
	default:
		return false
	}
}

// Bounds limits the edge count of a path.
type Bounds struct {
	Min int `json:"min" mapstructure:"min"`
	Max int `json:"max" mapstructure:"max"`
}

// DefaultBounds allows paths of 2 to 10 edges.
var DefaultBounds = Bounds{Min: 2, Max: 10}

// Validate checks 1 <= Min <= Max.
func (b Bounds) Validate() error {
	if b.Min < 1 {
		return fmt.Errorf("path length lower bound must be at least 1, got %d", b.Min)
	}
	if b.Max < b.Min {
		return fmt.Errorf("path length upper bound %d is below lower bound %d", b.Max, b.Min)
	}
	return nil
}

// PathQuery is a declarative path request.  Limit caps the number of
// matching paths; a query that would return more fails with
// ErrCodeCandidateLimit.  Zero means no cap.
type PathQuery struct {
	Start     Predicate  `json:"start"`
	End       Predicate  `json:"end"`
	Bounds    Bounds     `json:"bounds"`
	Templates []Template `json:"templates"`
	Limit     int        `json:"limit,omitempty"`
}

// DefaultQuery returns the standard opinion query with bounds b and no cap.
func DefaultQuery(b Bounds) PathQuery {
	return PathQuery{
		Start:     PredicateValidStart,
		End:       PredicateValidEnd,
		Bounds:    b,
		Templates: DefaultTemplates,
	}
}

// Validate checks the query before it is executed.
func (q PathQuery) Validate() error {
	for _, p := range []Predicate{q.Start, q.End} {
		if p != PredicateValidStart && p != PredicateValidEnd {
			return fmt.Errorf("unsupported predicate %q", p)
		}
	}
	if len(q.Templates) == 0 {
		return fmt.Errorf("query has no templates")
	}
	if q.Limit < 0 {
		return fmt.Errorf("candidate limit must not be negative, got %d", q.Limit)
	}
	return q.Bounds.Validate()
}

// PathQuerier executes a PathQuery against some graph.  An empty result is
// not an error.
type PathQuerier interface {
	FindPaths(ctx context.Context, q PathQuery) ([]CandidatePath, error)
}

//Personal.AI order the ending
