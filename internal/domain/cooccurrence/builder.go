package cooccurrence

import (
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// Builder turns tagged sentences into a classified Graph.
type Builder struct {
	classifier Classifier
	logger     logging.Logger
}

// NewBuilder returns a Builder that classifies nodes with c.
func NewBuilder(c Classifier, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{classifier: c, logger: logger}
}

// Build ingests sentences in order; the sentence index is the sentence id and
// the token index is the position.  Flags are computed once every sentence
// has been ingested.  On error no graph is returned.
func (b *Builder) Build(sentences [][]pos.Token) (*Graph, error) {
	if len(sentences) == 0 {
		return nil, errors.EmptyCorpus()
	}

	g := newGraph()
	g.sentences = len(sentences)
	for sid, tokens := range sentences {
		var prev *Node
		for pid, tok := range tokens {
			if !tok.Tag.Valid() {
				return nil, errors.TaggingError(sid, pid)
			}
			cur := g.observe(tok, Occurrence{SentenceID: sid, Position: pid})
			if prev != nil {
				g.link(prev.word, cur.word)
			}
			prev = cur
		}
	}

	if err := g.classify(b.classifier); err != nil {
		return nil, err
	}

	b.logger.Debug("co-occurrence graph built",
		logging.Int("sentences", g.sentences),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()),
		logging.Float64("start_threshold", b.classifier.StartThreshold))
	return g, nil
}

//Personal.AI order the ending
