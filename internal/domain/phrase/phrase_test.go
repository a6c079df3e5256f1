package phrase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/internal/testutil"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

func tagged(s string) []pos.Token {
	var out []pos.Token
	for _, f := range strings.Fields(s) {
		i := strings.LastIndex(f, "/")
		out = append(out, pos.NewToken(f[:i], pos.ParseTag(f[i+1:])))
	}
	return out
}

func buildGraph(t *testing.T, threshold float64, sentences ...string) *cooccurrence.Graph {
	t.Helper()
	corpus := make([][]pos.Token, len(sentences))
	for i, s := range sentences {
		corpus[i] = tagged(s)
	}
	g, err := cooccurrence.NewBuilder(cooccurrence.NewClassifier(threshold), nil).Build(corpus)
	require.NoError(t, err)
	return g
}

const (
	phoneS0 = "my/pr phone/nn calls/nn drop/vb frequently/rb with/in the/dt iphone/nn ./pp"
	phoneS1 = "great/jj device/nn ,/pp but/cc the/dt calls/nn drop/vb too/rb frequently/rb ./pp"
)

func texts(paths []CandidatePath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Text()
	}
	return out
}

func node(word string, tag pos.Tag, occ ...cooccurrence.Occurrence) PathNode {
	return PathNode{Word: word, Tag: tag, Occurrences: occ}
}

func oc(sid, pid int) cooccurrence.Occurrence {
	return cooccurrence.Occurrence{SentenceID: sid, Position: pid}
}

// ─────────────────────────────────────────────────────────────────────────────
// Templates
// ─────────────────────────────────────────────────────────────────────────────

func TestTemplate_Patterns(t *testing.T) {
	want := []string{"n+.*v+.*j+", "j+.*t+.*v+", "r*.*j+.*n+", "r+.*i+.*n+"}
	for i, tpl := range DefaultTemplates {
		assert.Equal(t, want[i], tpl.Pattern(), tpl.Name)
		assert.Equal(t, ".*"+want[i]+".*", tpl.AnchoredPattern())
	}
}

func TestTemplateSet_Match(t *testing.T) {
	set, err := CompileTemplates(DefaultTemplates)
	require.NoError(t, err)

	cases := []struct {
		tags []pos.Tag
		want []string
	}{
		{[]pos.Tag{pos.Noun, pos.Verb, pos.Adjective}, []string{"nn+vb+jj+"}},
		{[]pos.Tag{pos.Noun, pos.Noun, pos.Other, pos.Verb, pos.Adjective, pos.Adjective}, []string{"nn+vb+jj+"}},
		{[]pos.Tag{pos.Adjective, pos.To, pos.Verb}, []string{"jj+to+vb+"}},
		{[]pos.Tag{pos.Adjective, pos.Noun}, []string{"rb*jj+nn+"}},
		{[]pos.Tag{pos.Adverb, pos.Preposition, pos.Adjective, pos.Noun}, []string{"rb*jj+nn+", "rb+in+nn+"}},
		{[]pos.Tag{pos.Verb, pos.Adverb, pos.Preposition, pos.Other, pos.Noun}, []string{"rb+in+nn+"}},
		{[]pos.Tag{pos.Verb, pos.Noun, pos.Adjective}, nil},
		{[]pos.Tag{pos.Noun}, nil},
		{nil, nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, set.Match(tc.tags), pos.Symbols(tc.tags))
	}
	assert.Len(t, set.Templates(), 4)
}

func TestTemplate_Validate(t *testing.T) {
	assert.Error(t, Template{}.Validate())
	assert.Error(t, Template{Name: "empty"}.Validate())
	assert.Error(t, Template{Name: "other", Elements: []Element{{pos.Other, 1}}}.Validate())
	assert.Error(t, Template{Name: "min", Elements: []Element{{pos.Noun, 2}}}.Validate())
	assert.NoError(t, Template{Name: "nn", Elements: []Element{{pos.Noun, 1}}}.Validate())

	_, err := CompileTemplates([]Template{{Name: "bad"}})
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Query contract
// ─────────────────────────────────────────────────────────────────────────────

func TestBounds_Validate(t *testing.T) {
	assert.NoError(t, DefaultBounds.Validate())
	assert.Error(t, Bounds{Min: 0, Max: 3}.Validate())
	assert.Error(t, Bounds{Min: 4, Max: 3}.Validate())
}

func TestPathQuery_Validate(t *testing.T) {
	assert.NoError(t, DefaultQuery(DefaultBounds).Validate())

	q := DefaultQuery(DefaultBounds)
	q.Start = "nope"
	assert.Error(t, q.Validate())

	q = DefaultQuery(DefaultBounds)
	q.Templates = nil
	assert.Error(t, q.Validate())
}

func TestCandidatePath_Accessors(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("very", pos.Adverb), node("nice", pos.Adjective), node("phone", pos.Noun), node(".", pos.Punctuation),
	}, Length: 3}
	assert.Equal(t, []string{"very", "nice", "phone", "."}, p.Words())
	assert.Equal(t, "very nice phone .", p.Text())
	assert.Equal(t, []pos.Tag{pos.Adverb, pos.Adjective, pos.Noun, pos.Punctuation}, p.Tags())
	require.Len(t, p.Interior(), 2)
	assert.Equal(t, "nice", p.Interior()[0].Word)
	assert.Nil(t, CandidatePath{Nodes: p.Nodes[:2]}.Interior())
}

// ─────────────────────────────────────────────────────────────────────────────
// Matcher
// ─────────────────────────────────────────────────────────────────────────────

func TestMatcher_PhoneCorpus(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)
	logger := testutil.NewMockLogger()

	paths, err := NewMatcher(4, logger).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"calls drop frequently with the iphone .",
		"calls drop too frequently with the iphone .",
		"drop frequently with the iphone .",
		"drop too frequently with the iphone .",
		"my phone calls drop frequently with the iphone .",
		"my phone calls drop too frequently with the iphone .",
		"phone calls drop frequently with the iphone .",
		"phone calls drop too frequently with the iphone .",
	}, texts(paths))
	assert.True(t, logger.HasMessage("debug", "path match complete"))

	for _, p := range paths {
		assert.Equal(t, []string{"rb+in+nn+"}, p.Templates)
		assert.Equal(t, len(p.Nodes)-1, p.Length)
	}
}

func TestMatcher_ResultProperties(t *testing.T) {
	g := buildGraph(t, 15, phoneS0, phoneS1, "the/dt battery/nn seems/vb really/rb weak/jj ,/pp but/cc ok/jj ./pp")
	set, err := CompileTemplates(DefaultTemplates)
	require.NoError(t, err)

	bounds := Bounds{Min: 3, Max: 7}
	paths, err := NewMatcher(2, nil).Match(context.Background(), g, DefaultQuery(bounds))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, p := range paths {
		assert.GreaterOrEqual(t, p.Length, bounds.Min, p.Text())
		assert.LessOrEqual(t, p.Length, bounds.Max, p.Text())

		first, _ := g.Node(p.Nodes[0].Word)
		last, _ := g.Node(p.Nodes[len(p.Nodes)-1].Word)
		assert.True(t, first.ValidStart(), p.Text())
		assert.True(t, last.ValidEnd(), p.Text())

		interior := make([]pos.Tag, 0, len(p.Nodes))
		seen := make(map[string]bool)
		for i, n := range p.Nodes {
			assert.False(t, seen[n.Word], "repeated node in %s", p.Text())
			seen[n.Word] = true
			if i > 0 && i < len(p.Nodes)-1 {
				interior = append(interior, n.Tag)
			}
			if i > 0 {
				assert.Contains(t, g.Successors(p.Nodes[i-1].Word), n.Word)
			}
		}
		assert.NotEmpty(t, set.Match(interior), p.Text())
	}
}

func TestMatcher_LengthBounds(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)

	short, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(Bounds{Min: 2, Max: 5}))
	require.NoError(t, err)
	assert.Equal(t, []string{"drop frequently with the iphone ."}, texts(short))

	long, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(Bounds{Min: 6, Max: 10}))
	require.NoError(t, err)
	assert.Len(t, long, 7)
	for _, p := range long {
		assert.GreaterOrEqual(t, p.Length, 6)
	}
}

func TestMatcher_TerminatesOnCycles(t *testing.T) {
	g := buildGraph(t, 15, "very/rb nice/jj phone/nn very/rb nice/jj phone/nn ./pp")
	require.Contains(t, g.Successors("phone"), "very")

	paths, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)
	assert.Equal(t, []string{"very nice phone ."}, texts(paths))
}

func TestMatcher_MultiTemplatePathReportedOnce(t *testing.T) {
	g := buildGraph(t, 5, "so/cc quickly/rb in/in great/jj style/nn ./pp")

	paths, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"in great style .",
		"quickly in great style .",
		"so quickly in great style .",
	}, texts(paths))
	assert.Equal(t, []string{"rb*jj+nn+", "rb+in+nn+"}, paths[2].Templates)
}

func TestMatcher_DeterministicAcrossWorkerCounts(t *testing.T) {
	g := buildGraph(t, 15, phoneS0, phoneS1, "the/dt screen/nn looks/vb very/rb bright/jj ./pp")

	base, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)
	for _, workers := range []int{2, 8, 0} {
		got, err := NewMatcher(workers, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
		require.NoError(t, err)
		assert.Equal(t, base, got, "workers=%d", workers)
	}
}

func TestMatcher_EndSetComesFromTagIndex(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)

	ends := endSet(g, PredicateValidEnd)
	var words []string
	for w := range ends {
		words = append(words, w)
	}
	sort.Strings(words)
	assert.Equal(t, g.EndWords(), words)

	starts := endSet(g, PredicateValidStart)
	assert.Len(t, starts, len(g.StartWords()))
}

func TestMatcher_CandidateLimit(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)

	q := DefaultQuery(DefaultBounds)
	q.Limit = 8
	paths, err := NewMatcher(4, nil).Match(context.Background(), g, q)
	require.NoError(t, err)
	assert.Len(t, paths, 8)

	q.Limit = 7
	logger := testutil.NewMockLogger()
	_, err = NewMatcher(4, logger).Match(context.Background(), g, q)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCandidateLimit), err.Error())
	assert.True(t, logger.HasMessage("warn", "path match aborted"))

	q.Limit = -1
	_, err = NewMatcher(1, nil).Match(context.Background(), g, q)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

// denseSentences makes every ordered pair of n words adjacent in some
// sentence, so the number of simple paths grows factorially with depth.
func denseSentences(n int) []string {
	tags := []string{"nn", "vb", "jj"}
	var out []string
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			out = append(out, fmt.Sprintf("w%d/%s w%d/%s ./pp", i, tags[i%3], j, tags[j%3]))
		}
	}
	return out
}

func TestMatcher_CandidateLimitStopsDenseSearch(t *testing.T) {
	g := buildGraph(t, 5, denseSentences(12)...)

	q := DefaultQuery(DefaultBounds)
	q.Limit = 1000
	started := time.Now()
	_, err := NewMatcher(4, nil).Match(context.Background(), g, q)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCandidateLimit), err.Error())
	assert.Less(t, time.Since(started), 5*time.Second)
}

func TestMatcher_NoMatchIsEmptyNotError(t *testing.T) {
	g := buildGraph(t, 5, "hello/uh ./pp")
	paths, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestMatcher_InvalidQuery(t *testing.T) {
	g := buildGraph(t, 5, phoneS0)
	_, err := NewMatcher(1, nil).Match(context.Background(), g, DefaultQuery(Bounds{Min: 3, Max: 1}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidConfig))
}

func TestMatcher_ContextCancelled(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMatcher(2, nil).Match(ctx, g, DefaultQuery(DefaultBounds))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInMemoryQuerier(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)
	var q PathQuerier = InMemoryQuerier{Graph: g, Matcher: NewMatcher(1, nil)}

	paths, err := q.FindPaths(context.Background(), DefaultQuery(DefaultBounds))
	require.NoError(t, err)
	assert.Len(t, paths, 8)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scorer
// ─────────────────────────────────────────────────────────────────────────────

func TestScorer_AllSentencesWithinGap(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("the", pos.Other, oc(0, 0), oc(1, 3)),
		node("screen", pos.Noun, oc(0, 1), oc(1, 4)),
		node("glows", pos.Verb, oc(0, 2), oc(1, 5)),
		node(".", pos.Punctuation, oc(0, 3), oc(1, 6)),
	}, Length: 3}

	s := NewScorer(3)
	assert.Equal(t, 2, s.Overlap(p))
	assert.Equal(t, 2.0/3.0, s.Score(p))
}

func TestScorer_DropsSentencesMissingFromAPair(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("a", pos.Adverb, oc(0, 0), oc(1, 0), oc(2, 0)),
		node("b", pos.Adjective, oc(0, 1), oc(1, 1)),
		node("c", pos.Noun, oc(1, 2), oc(2, 1)),
		node(".", pos.Punctuation, oc(1, 3), oc(2, 2)),
	}, Length: 3}

	assert.Equal(t, 1, NewScorer(3).Overlap(p), "only sentence 1 holds every pair")
}

func TestScorer_GapIsExclusive(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("a", pos.Adverb, oc(0, 0)),
		node("b", pos.Noun, oc(0, 3)),
	}, Length: 1}

	assert.Equal(t, 0, NewScorer(3).Overlap(p))
	assert.Equal(t, 1, NewScorer(4).Overlap(p))
}

func TestScorer_OneFalsePairVetoesSentence(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("a", pos.Adverb, oc(0, 0), oc(1, 0)),
		node("b", pos.Adjective, oc(0, 1), oc(1, 1)),
		node("c", pos.Noun, oc(0, 2), oc(1, 9)),
		node(".", pos.Punctuation, oc(0, 3), oc(1, 10)),
	}, Length: 3}

	assert.Equal(t, 1, NewScorer(3).Overlap(p))
}

func TestScorer_RepeatedWordUsesClosestPositions(t *testing.T) {
	p := CandidatePath{Nodes: []PathNode{
		node("very", pos.Adverb, oc(0, 0), oc(0, 7)),
		node("good", pos.Adjective, oc(0, 8)),
	}, Length: 1}

	assert.Equal(t, 1, NewScorer(3).Overlap(p))
}

func TestScorer_Defaults(t *testing.T) {
	assert.Equal(t, DefaultMaxGap, NewScorer(0).MaxGap)
	assert.Equal(t, 0.0, NewScorer(3).Score(CandidatePath{}))
	assert.Equal(t, 0, NewScorer(3).Overlap(CandidatePath{Nodes: []PathNode{node("x", pos.Noun, oc(0, 0))}}))
}

func TestScorer_RankOrdering(t *testing.T) {
	mk := func(length int, words ...string) CandidatePath {
		nodes := make([]PathNode, len(words))
		for i, w := range words {
			nodes[i] = node(w, pos.Other, oc(0, i))
		}
		return CandidatePath{Nodes: nodes, Length: length}
	}
	disjoint := CandidatePath{Nodes: []PathNode{
		node("x", pos.Other, oc(0, 0)), node("y", pos.Other, oc(1, 0)), node("z", pos.Other, oc(1, 1)),
	}, Length: 2}

	ranked := NewScorer(3).Rank([]CandidatePath{
		disjoint,
		mk(4, "e", "f", "g", "h", "i"),
		mk(2, "b", "c", "d"),
		mk(2, "a", "c", "d"),
	})

	var got []string
	for _, r := range ranked {
		got = append(got, r.Text())
	}
	assert.Equal(t, []string{"a c d", "b c d", "e f g h i", "x y z"}, got)
	assert.Equal(t, 0.5, ranked[0].Score)
	assert.Equal(t, 0.25, ranked[2].Score)
	assert.Equal(t, 0.0, ranked[3].Score)
}

func TestScorer_RankPhoneCorpus(t *testing.T) {
	g := buildGraph(t, 5, phoneS0, phoneS1)
	paths, err := NewMatcher(2, nil).Match(context.Background(), g, DefaultQuery(DefaultBounds))
	require.NoError(t, err)

	ranked := NewScorer(DefaultMaxGap).Rank(paths)
	require.Len(t, ranked, 8)

	want := []struct {
		text  string
		score float64
	}{
		{"drop frequently with the iphone .", 1.0 / 5},
		{"calls drop frequently with the iphone .", 1.0 / 6},
		{"phone calls drop frequently with the iphone .", 1.0 / 7},
		{"my phone calls drop frequently with the iphone .", 1.0 / 8},
		{"drop too frequently with the iphone .", 0},
		{"calls drop too frequently with the iphone .", 0},
		{"phone calls drop too frequently with the iphone .", 0},
		{"my phone calls drop too frequently with the iphone .", 0},
	}
	for i, w := range want {
		assert.Equal(t, w.text, ranked[i].Text())
		assert.InDelta(t, w.score, ranked[i].Score, 1e-12, w.text)
	}
	assert.Equal(t, []string{"vb", "rb", "in", "other", "nn", "pp"}, ranked[0].Tags)
	assert.Equal(t, 5, ranked[0].Length)
}

//Personal.AI order the ending
