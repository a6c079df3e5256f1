package nlp

import (
	"context"

	"github.com/jdkato/prose/v2"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// ProseTagger tags raw English text with prose's averaged perceptron model.
type ProseTagger struct{}

// NewProseTagger returns a ProseTagger.
func NewProseTagger() ProseTagger { return ProseTagger{} }

// Tag implements Tagger.
func (ProseTagger) Tag(_ context.Context, sentence string) ([]pos.Token, error) {
	doc, err := prose.NewDocument(sentence,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "prose tagging failed")
	}
	toks := doc.Tokens()
	out := make([]pos.Token, 0, len(toks))
	for _, t := range toks {
		out = append(out, pos.NewToken(t.Text, ParsePennTag(t.Tag)))
	}
	return out, nil
}

// New returns the tagger for kind: "prose" or "readable" (the default).
func New(kind string) Tagger {
	if kind == "prose" {
		return NewProseTagger()
	}
	return NewReadableTagger()
}

//Personal.AI order the ending
