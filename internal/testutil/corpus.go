package testutil

import (
	"strings"

	"github.com/turtacn/OpinionGraph/internal/domain/pos"
)

// Two-sentence review corpus shared by the pipeline, storage and interface
// tests.  With the strict profile it ranks "drop frequently with the iphone ."
// first at 0.2.
const (
	PhoneSentence0 = "my/pr phone/nn calls/nn drop/vb frequently/rb with/in the/dt iphone/nn ./pp"
	PhoneSentence1 = "great/jj device/nn ,/pp but/cc the/dt calls/nn drop/vb too/rb frequently/rb ./pp"
)

// PhoneCorpus is the phone corpus as readable-format text, one sentence per line.
const PhoneCorpus = PhoneSentence0 + "\n" + PhoneSentence1 + "\n"

// Tagged splits "word/tag" fields into tokens.
func Tagged(sentence string) []pos.Token {
	var out []pos.Token
	for _, f := range strings.Fields(sentence) {
		i := strings.LastIndex(f, "/")
		out = append(out, pos.NewToken(f[:i], pos.ParseTag(f[i+1:])))
	}
	return out
}

// TaggedCorpus applies Tagged to each sentence.
func TaggedCorpus(sentences ...string) [][]pos.Token {
	out := make([][]pos.Token, len(sentences))
	for i, s := range sentences {
		out[i] = Tagged(s)
	}
	return out
}

//Personal.AI order the ending
