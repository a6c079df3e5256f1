package phrase

import (
	"sort"
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// DefaultMaxGap is the default exclusive bound on the position distance of
// adjacent phrase words within one sentence.
const DefaultMaxGap = 3

// RankedPhrase is one scored candidate.
type RankedPhrase struct {
	Score     float64  `json:"score"`
	Words     []string `json:"words"`
	Tags      []string `json:"tags"`
	Length    int      `json:"length"`
	Overlap   int      `json:"overlap"`
	Templates []string `json:"templates,omitempty"`
}

// Text joins the words with single spaces.
func (r RankedPhrase) Text() string { return strings.Join(r.Words, " ") }

// Scorer measures how consistently a path's words sit close together across
// the sentences they share.
type Scorer struct {
	MaxGap int
}

// NewScorer returns a Scorer; maxGap <= 0 selects DefaultMaxGap.
func NewScorer(maxGap int) Scorer {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return Scorer{MaxGap: maxGap}
}

// Overlap counts the sentences in which every adjacent pair of path words is
// present and within MaxGap positions of each other.
func (s Scorer) Overlap(p CandidatePath) int {
	if len(p.Nodes) < 2 {
		return 0
	}
	var folded map[int]bool
	for i := 0; i+1 < len(p.Nodes); i++ {
		pair := s.pairConsistency(positionsBySentence(p.Nodes[i]), positionsBySentence(p.Nodes[i+1]))
		if folded == nil {
			folded = pair
			continue
		}
		for sid, ok := range folded {
			other, present := pair[sid]
			if !present {
				delete(folded, sid)
				continue
			}
			folded[sid] = ok && other
		}
	}
	count := 0
	for _, ok := range folded {
		if ok {
			count++
		}
	}
	return count
}

// Score is Overlap divided by the path's edge count.
func (s Scorer) Score(p CandidatePath) float64 {
	if p.Length <= 0 {
		return 0
	}
	return float64(s.Overlap(p)) / float64(p.Length)
}

// pairConsistency maps every sentence shared by a and b to whether some pair
// of their positions is closer than MaxGap.  Unshared sentences are dropped.
func (s Scorer) pairConsistency(a, b map[int][]int) map[int]bool {
	out := make(map[int]bool)
	for sid, pa := range a {
		pb, ok := b[sid]
		if !ok {
			continue
		}
		out[sid] = withinGap(pa, pb, s.MaxGap)
	}
	return out
}

func withinGap(a, b []int, gap int) bool {
	for _, x := range a {
		for _, y := range b {
			d := x - y
			if d < 0 {
				d = -d
			}
			if d < gap {
				return true
			}
		}
	}
	return false
}

func positionsBySentence(n PathNode) map[int][]int {
	out := make(map[int][]int)
	for _, o := range n.Occurrences {
		out[o.SentenceID] = append(out[o.SentenceID], o.Position)
	}
	return out
}

// Rank scores every path and orders them by score descending, then shorter
// length, then joined words.
func (s Scorer) Rank(paths []CandidatePath) []RankedPhrase {
	out := make([]RankedPhrase, 0, len(paths))
	for _, p := range paths {
		overlap := s.Overlap(p)
		score := 0.0
		if p.Length > 0 {
			score = float64(overlap) / float64(p.Length)
		}
		out = append(out, RankedPhrase{
			Score:     score,
			Words:     p.Words(),
			Tags:      tagStrings(p.Tags()),
			Length:    p.Length,
			Overlap:   overlap,
			Templates: p.Templates,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Length != out[j].Length {
			return out[i].Length < out[j].Length
		}
		return out[i].Text() < out[j].Text()
	})
	return out
}

func tagStrings(tags []pos.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}

//Personal.AI order the ending
