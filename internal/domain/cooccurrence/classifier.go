package cooccurrence

import (
	"fmt"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// Classifier derives the valid-start and valid-end flags of a node.
type Classifier struct {
	// StartThreshold is the largest mean position a valid-start word may have.
	StartThreshold float64
}

// NewClassifier returns a Classifier using threshold.
func NewClassifier(threshold float64) Classifier {
	return Classifier{StartThreshold: threshold}
}

// IsValidEnd reports whether a word tagged tag can end a phrase.
func IsValidEnd(tag pos.Tag) bool {
	return tag.IsBoundary()
}

// MeanPosition is the arithmetic mean of the occurrence positions.
func MeanPosition(occ []Occurrence) (float64, error) {
	if len(occ) == 0 {
		return 0, errors.InvariantViolation("mean position of a node without occurrences")
	}
	sum := 0
	for _, o := range occ {
		sum += o.Position
	}
	return float64(sum) / float64(len(occ)), nil
}

// IsValidStart reports whether the mean position of occ is at most threshold.
func IsValidStart(occ []Occurrence, threshold float64) (bool, error) {
	mean, err := MeanPosition(occ)
	if err != nil {
		return false, err
	}
	return mean <= threshold, nil
}

// Classify returns the (validStart, validEnd) flags for n.
func (c Classifier) Classify(n *Node) (bool, bool, error) {
	start, err := IsValidStart(n.occurrences, c.StartThreshold)
	if err != nil {
		return false, false, errors.Wrap(err, errors.CodeUnknown, "classify node").
			WithDetail(fmt.Sprintf("word=%q", n.word))
	}
	return start, IsValidEnd(n.tag), nil
}

//Personal.AI order the ending
