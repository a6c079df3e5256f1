package nlp

import (
	"bufio"
	"io"
	"strings"
)

// MaxSentenceBytes bounds one corpus line.
const MaxSentenceBytes = 1 << 20

// ReadCorpus returns the trimmed, non-blank lines of r.  Lines starting with
// '#' are comments.  Sentence ids in later errors index the returned slice,
// not the line numbers of r.
func ReadCorpus(r io.Reader) ([]string, error) {
	var sentences []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxSentenceBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sentences = append(sentences, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

//Personal.AI order the ending
