package repositories

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/phrase"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/internal/testutil"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

type CooccurrenceRepoTestSuite struct {
	suite.Suite
	driver *MockInfraDriver
	log    *testutil.MockLogger
	repo   *CooccurrenceRepository
	graph  *cooccurrence.Graph
}

func (s *CooccurrenceRepoTestSuite) SetupTest() {
	s.driver = newMockInfraDriver()
	s.log = testutil.NewMockLogger()
	s.repo = NewCooccurrenceRepository(s.driver, 5, s.log)

	g, err := cooccurrence.NewBuilder(cooccurrence.NewClassifier(5), nil).
		Build(testutil.TaggedCorpus(testutil.PhoneSentence0, testutil.PhoneSentence1))
	s.Require().NoError(err)
	s.graph = g
}

func TestCooccurrenceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CooccurrenceRepoTestSuite))
}

func cypherContaining(fragment string) interface{} {
	return mock.MatchedBy(func(c string) bool { return strings.Contains(c, fragment) })
}

func (s *CooccurrenceRepoTestSuite) TestEnsureSchema() {
	s.driver.Tx.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&MockResult{}, nil)

	s.Require().NoError(s.repo.EnsureSchema(context.Background()))
	s.driver.AssertNumberOfCalls(s.T(), "ExecuteWrite", 2)
	s.driver.Tx.AssertCalled(s.T(), "Run", mock.Anything, cypherContaining("REQUIRE w.word IS UNIQUE"), mock.Anything)
	s.driver.Tx.AssertCalled(s.T(), "Run", mock.Anything, cypherContaining("ON (w.tag)"), mock.Anything)
}

func (s *CooccurrenceRepoTestSuite) TestSaveGraph_BatchesNodesThenEdges() {
	var nodeBatches, edgeBatches []int
	var firstNodes []map[string]any
	s.driver.Tx.On("Run", mock.Anything, cypherContaining("MERGE (w:Word"), mock.Anything).
		Run(func(args mock.Arguments) {
			rows := args.Get(2).(map[string]any)["nodes"].([]map[string]any)
			if firstNodes == nil {
				firstNodes = rows
			}
			nodeBatches = append(nodeBatches, len(rows))
		}).Return(&MockResult{}, nil)
	s.driver.Tx.On("Run", mock.Anything, cypherContaining("MERGE (a)-[:CO_OCCURRENCE]->(b)"), mock.Anything).
		Run(func(args mock.Arguments) {
			s.Len(nodeBatches, 3, "edges are written after every node batch")
			edgeBatches = append(edgeBatches, len(args.Get(2).(map[string]any)["edges"].([]map[string]any)))
		}).Return(&MockResult{}, nil)

	s.Require().NoError(s.repo.SaveGraph(context.Background(), s.graph))

	s.Equal([]int{5, 5, 4}, nodeBatches)
	s.Equal([]int{5, 5, 5, 1}, edgeBatches)
	s.driver.AssertNumberOfCalls(s.T(), "ExecuteWrite", 1)
	s.Equal(map[string]any{
		"word": "my", "tag": "other", "sym": "x", "pri": []string{"0:0"}, "vsn": true, "ven": false,
	}, firstNodes[0])
	s.True(s.log.HasMessage("info", "co-occurrence graph saved"))
}

func (s *CooccurrenceRepoTestSuite) TestSaveGraph_StatementFailure() {
	s.driver.Tx.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(nil, stderrors.New("constraint violated"))

	err := s.repo.SaveGraph(context.Background(), s.graph)
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeGraphStore))
	s.driver.Tx.AssertNumberOfCalls(s.T(), "Run", 1)
}

func (s *CooccurrenceRepoTestSuite) TestReset() {
	s.driver.Tx.On("Run", mock.Anything, "MATCH (w:Word) DETACH DELETE w", mock.Anything).Return(&MockResult{}, nil)
	s.NoError(s.repo.Reset(context.Background()))

	s.driver.WorkErr = stderrors.New("unavailable")
	s.True(errors.IsCode(s.repo.Reset(context.Background()), errors.ErrCodeGraphStore))
}

func pathRecord(words, tags []string, pri [][]string) *neo4j.Record {
	w := make([]any, len(words))
	t := make([]any, len(tags))
	p := make([]any, len(pri))
	for i := range words {
		w[i] = words[i]
		t[i] = tags[i]
		list := make([]any, len(pri[i]))
		for j, s := range pri[i] {
			list[j] = s
		}
		p[i] = list
	}
	return NewRecord([]string{"words", "tags", "pri"}, []any{w, t, p})
}

func (s *CooccurrenceRepoTestSuite) TestFindPaths_DecodesAndSorts() {
	res := &MockResult{Records: []*neo4j.Record{
		pathRecord(
			[]string{"drop", "frequently", "with", "the", "iphone", "."},
			[]string{"vb", "rb", "in", "other", "nn", "pp"},
			[][]string{{"0:3", "1:6"}, {"0:4", "1:8"}, {"0:5"}, {"0:6", "1:4"}, {"0:7"}, {"0:8", "1:9"}}),
		pathRecord(
			[]string{"calls", "drop", "frequently", "with", "the", "iphone", "."},
			[]string{"nn", "vb", "rb", "in", "other", "nn", "pp"},
			[][]string{{"0:2", "1:5"}, {"0:3", "1:6"}, {"0:4", "1:8"}, {"0:5"}, {"0:6", "1:4"}, {"0:7"}, {"0:8", "1:9"}}),
		pathRecord(
			[]string{"the", "iphone", "."},
			[]string{"other", "nn", "pp"},
			[][]string{{"0:6"}, {"0:7"}, {"0:8"}}),
	}}
	var params map[string]any
	s.driver.Tx.On("Run", mock.Anything, cypherContaining("MATCH path"), mock.Anything).
		Run(func(args mock.Arguments) { params = args.Get(2).(map[string]any) }).
		Return(res, nil)

	paths, err := s.repo.FindPaths(context.Background(), phrase.DefaultQuery(phrase.DefaultBounds))
	s.Require().NoError(err)

	s.Require().Len(paths, 2)
	s.Equal("calls drop frequently with the iphone .", paths[0].Text())
	s.Equal("drop frequently with the iphone .", paths[1].Text())
	s.Equal(5, paths[1].Length)
	s.Equal([]string{"rb+in+nn+"}, paths[1].Templates)
	s.Equal(pos.Other, paths[1].Nodes[3].Tag)
	s.Equal([]cooccurrence.Occurrence{{SentenceID: 0, Position: 3}, {SentenceID: 1, Position: 6}}, paths[1].Nodes[0].Occurrences)
	s.Equal([]string{".*n+.*v+.*j+.*", ".*j+.*t+.*v+.*", ".*r*.*j+.*n+.*", ".*r+.*i+.*n+.*"}, params["patterns"])

	score := phrase.NewScorer(3).Score(paths[1])
	s.InDelta(0.2, score, 1e-9)
}

func (s *CooccurrenceRepoTestSuite) TestFindPaths_InvalidQuery() {
	q := phrase.DefaultQuery(phrase.Bounds{Min: 3, Max: 2})
	_, err := s.repo.FindPaths(context.Background(), q)
	s.True(errors.IsCode(err, errors.ErrCodeInvalidConfig))
	s.driver.AssertNotCalled(s.T(), "ExecuteRead", mock.Anything, mock.Anything)
}

func (s *CooccurrenceRepoTestSuite) TestFindPaths_MalformedRecord() {
	bad := NewRecord([]string{"words", "tags", "pri"}, []any{[]any{"a", 1}, []any{"nn", "nn"}, []any{[]any{}, []any{}}})
	s.driver.Tx.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&MockResult{Records: []*neo4j.Record{bad}}, nil)

	_, err := s.repo.FindPaths(context.Background(), phrase.DefaultQuery(phrase.DefaultBounds))
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeGraphStore))
	s.True(errors.IsCode(err, errors.ErrCodeInvariantViolation))
}

func (s *CooccurrenceRepoTestSuite) TestPathQueryCypher() {
	c := PathQueryCypher(phrase.DefaultQuery(phrase.Bounds{Min: 2, Max: 7}))
	s.Contains(c, "(s:Word)-[:CO_OCCURRENCE*2..7]->(e:Word)")
	s.Contains(c, "s.vsn = true AND e.ven = true")
	s.Contains(c, "nodes(path)[1..-1]")
	s.Contains(c, "syms =~ p")
	s.NotContains(c, "LIMIT")

	q := phrase.DefaultQuery(phrase.DefaultBounds)
	q.Limit = 50
	s.True(strings.HasSuffix(PathQueryCypher(q), "\nLIMIT 51"))
}

func (s *CooccurrenceRepoTestSuite) TestFindPaths_CandidateLimit() {
	res := &MockResult{Records: []*neo4j.Record{
		pathRecord([]string{"nice", "phone", "."}, []string{"jj", "nn", "pp"}, [][]string{{"0:0"}, {"0:1"}, {"0:2"}}),
		pathRecord([]string{"good", "phone", "."}, []string{"jj", "nn", "pp"}, [][]string{{"1:0"}, {"0:1"}, {"0:2"}}),
	}}
	s.driver.Tx.On("Run", mock.Anything, cypherContaining("LIMIT 2"), mock.Anything).Return(res, nil)

	q := phrase.DefaultQuery(phrase.DefaultBounds)
	q.Limit = 1
	_, err := s.repo.FindPaths(context.Background(), q)
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeCandidateLimit), err.Error())
}

func (s *CooccurrenceRepoTestSuite) TestChunk() {
	rows := make([]map[string]any, 7)
	s.Len(chunk(rows, 3), 3)
	s.Len(chunk(rows, 7), 1)
	s.Empty(chunk(nil, 3))
}

//Personal.AI order the ending
