// Package nlp adapts part-of-speech taggers to the coarse pos vocabulary.
package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// Tagger splits one sentence into tagged tokens in reading order.  Words are
// lowercased.  A token the tagger could not label carries pos.Unknown; it is
// rejected later by the graph builder with its exact location.
type Tagger interface {
	Tag(ctx context.Context, sentence string) ([]pos.Token, error)
}

// TagAll tags every sentence with t, in order.  Blank sentences yield no
// tokens and are never passed to t, so indexes stay aligned with the input.
func TagAll(ctx context.Context, t Tagger, sentences []string) ([][]pos.Token, error) {
	out := make([][]pos.Token, 0, len(sentences))
	for i, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			out = append(out, nil)
			continue
		}
		toks, err := t.Tag(ctx, s)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, "tagging failed").
				WithDetail(fmt.Sprintf("sentence=%d", i))
		}
		out = append(out, toks)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Readable format
// ─────────────────────────────────────────────────────────────────────────────

// ReadableTagger parses pre-tagged text in the "word/TAG word/TAG" format.
// The tag is the text after the last slash, so "and/or/CC" is the word
// "and/or".  Tags are reduced to their first two letters.
type ReadableTagger struct{}

// NewReadableTagger returns a ReadableTagger.
func NewReadableTagger() ReadableTagger { return ReadableTagger{} }

// Tag implements Tagger.
func (ReadableTagger) Tag(_ context.Context, sentence string) ([]pos.Token, error) {
	fields := strings.Fields(sentence)
	out := make([]pos.Token, 0, len(fields))
	for _, f := range fields {
		word, tag := f, ""
		if i := strings.LastIndex(f, "/"); i > 0 {
			word, tag = f[:i], f[i+1:]
		}
		out = append(out, pos.NewToken(word, ParsePennTag(tag)))
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Tag mapping
// ─────────────────────────────────────────────────────────────────────────────

var punctuationTags = map[string]bool{
	".": true, ",": true, ":": true, "(": true, ")": true,
	"``": true, "''": true, "-LRB-": true, "-RRB-": true,
}

// ParsePennTag maps Penn Treebank and engtagger codes onto pos.Tag.  Every
// punctuation mark ("." "," ":" quotes brackets, engtagger "PP*") becomes
// pos.Punctuation.
func ParsePennTag(tag string) pos.Tag {
	if punctuationTags[tag] {
		return pos.Punctuation
	}
	return pos.ParseTag(tag)
}

//Personal.AI order the ending
