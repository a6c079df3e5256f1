package cooccurrence

import (
	"sort"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// EdgeLabel is the label of every co-occurrence edge.
const EdgeLabel = "co_occurrence"

// Edge links a word to the word that immediately followed it in some sentence.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ─────────────────────────────────────────────────────────────────────────────
// OccurrenceIndex
// ─────────────────────────────────────────────────────────────────────────────

// OccurrenceIndex maps a word to its node.  Lookups never create entries;
// InsertWithDefault is the only way to add one.
type OccurrenceIndex struct {
	nodes map[string]*Node
	order []string
}

func newOccurrenceIndex() *OccurrenceIndex {
	return &OccurrenceIndex{nodes: make(map[string]*Node)}
}

// Get returns the node for word.
func (idx *OccurrenceIndex) Get(word string) (*Node, bool) {
	n, ok := idx.nodes[word]
	return n, ok
}

// InsertWithDefault returns the node for word, creating an empty one first if
// the word has not been seen.  The second result reports creation.
func (idx *OccurrenceIndex) InsertWithDefault(word string) (*Node, bool) {
	if n, ok := idx.nodes[word]; ok {
		return n, false
	}
	n := &Node{word: word}
	idx.nodes[word] = n
	idx.order = append(idx.order, word)
	return n, true
}

// Len returns the number of distinct words.
func (idx *OccurrenceIndex) Len() int { return len(idx.order) }

// ─────────────────────────────────────────────────────────────────────────────
// Graph
// ─────────────────────────────────────────────────────────────────────────────

// Graph is the co-occurrence graph of one corpus.  It is built by Builder and
// read-only afterwards; concurrent readers are safe.
type Graph struct {
	index      *OccurrenceIndex
	successors map[string][]string
	edges      map[Edge]struct{}
	tagIndex   map[pos.Tag][]string
	sentences  int
}

func newGraph() *Graph {
	return &Graph{
		index:      newOccurrenceIndex(),
		successors: make(map[string][]string),
		edges:      make(map[Edge]struct{}),
		tagIndex:   make(map[pos.Tag][]string),
	}
}

// observe records one token occurrence; the tag is last-write-wins.
func (g *Graph) observe(tok pos.Token, occ Occurrence) *Node {
	n, _ := g.index.InsertWithDefault(tok.Word)
	n.tag = tok.Tag
	n.occurrences = append(n.occurrences, occ)
	return n
}

// link adds from→to unless it already exists.
func (g *Graph) link(from, to string) bool {
	e := Edge{From: from, To: to}
	if _, ok := g.edges[e]; ok {
		return false
	}
	g.edges[e] = struct{}{}
	g.successors[from] = append(g.successors[from], to)
	return true
}

// classify recomputes every derived flag and the tag index.
func (g *Graph) classify(c Classifier) error {
	g.tagIndex = make(map[pos.Tag][]string)
	for _, w := range g.index.order {
		n := g.index.nodes[w]
		start, end, err := c.Classify(n)
		if err != nil {
			return err
		}
		n.validStart, n.validEnd = start, end
		g.tagIndex[n.tag] = append(g.tagIndex[n.tag], w)
	}
	for _, words := range g.tagIndex {
		sort.Strings(words)
	}
	for _, succ := range g.successors {
		sort.Strings(succ)
	}
	return nil
}

// Node returns the node for word.
func (g *Graph) Node(word string) (*Node, bool) { return g.index.Get(word) }

// Nodes returns every node in first-seen order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, g.index.Len())
	for _, w := range g.index.order {
		out = append(out, g.index.nodes[w])
	}
	return out
}

// Successors returns the words reachable by one edge from word, sorted.
func (g *Graph) Successors(word string) []string { return g.successors[word] }

// Edges returns every edge sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// WordsByTag returns the sorted words whose final tag is tag.  The matcher
// seeds its valid-end set from the boundary tags.
func (g *Graph) WordsByTag(tag pos.Tag) []string { return g.tagIndex[tag] }

// StartWords returns the sorted valid-start words.
func (g *Graph) StartWords() []string {
	var out []string
	for _, n := range g.index.nodes {
		if n.validStart {
			out = append(out, n.word)
		}
	}
	sort.Strings(out)
	return out
}

// EndWords returns the sorted valid-end words.
func (g *Graph) EndWords() []string {
	var out []string
	for _, n := range g.index.nodes {
		if n.validEnd {
			out = append(out, n.word)
		}
	}
	sort.Strings(out)
	return out
}

func (g *Graph) NodeCount() int     { return g.index.Len() }
func (g *Graph) EdgeCount() int     { return len(g.edges) }
func (g *Graph) SentenceCount() int { return g.sentences }

// Snapshot returns every node's serialisable view in first-seen order.
func (g *Graph) Snapshot() []NodeSnapshot {
	out := make([]NodeSnapshot, 0, g.index.Len())
	for _, w := range g.index.order {
		out = append(out, g.index.nodes[w].Snapshot())
	}
	return out
}

//Personal.AI order the ending
