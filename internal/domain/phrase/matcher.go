package phrase

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// Matcher enumerates template-matching paths over an in-memory graph with a
// depth-bounded DFS.  Each start word is searched independently; results are
// merged into one deduplicated, sorted set.
type Matcher struct {
	workers int
	logger  logging.Logger
}

// NewMatcher returns a Matcher using up to workers goroutines.  A value <= 0
// means GOMAXPROCS.
func NewMatcher(workers int, logger logging.Logger) *Matcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Matcher{workers: workers, logger: logger}
}

// Match runs q against g.
func (m *Matcher) Match(ctx context.Context, g *cooccurrence.Graph, q PathQuery) ([]CandidatePath, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid path query")
	}
	set, err := CompileTemplates(q.Templates)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid template")
	}

	started := time.Now()
	var starts []string
	for _, n := range g.Nodes() {
		if q.Start.Holds(n) {
			starts = append(starts, n.Word())
		}
	}
	sort.Strings(starts)

	ends := endSet(g, q.End)

	var found atomic.Int64
	perStart := make([][]CandidatePath, len(starts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.workers)
	for i, word := range starts {
		i, word := i, word
		eg.Go(func() error {
			s := &search{
				ctx: egCtx, graph: g, query: q, templates: set,
				ends: ends, total: &found, visited: make(map[string]bool),
			}
			if err := s.walk(word, 0); err != nil {
				return err
			}
			perStart[i] = s.found
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if errors.IsCode(err, errors.ErrCodeCandidateLimit) {
			m.logger.WithContext(ctx).Warn("path match aborted",
				logging.Int("start_nodes", len(starts)),
				logging.Int("limit", q.Limit))
		}
		return nil, err
	}

	paths := mergePaths(perStart)
	m.logger.WithContext(ctx).Debug("path match complete",
		logging.Int("start_nodes", len(starts)),
		logging.Int("candidates", len(paths)),
		logging.Duration("elapsed", time.Since(started)))
	return paths, nil
}

// endSet resolves the end predicate once per query.  Valid ends are exactly
// the boundary-tagged words, so they are read from the tag index.
func endSet(g *cooccurrence.Graph, p Predicate) map[string]bool {
	out := make(map[string]bool)
	if p == PredicateValidEnd {
		for _, tag := range []pos.Tag{pos.Punctuation, pos.Conjunction} {
			for _, w := range g.WordsByTag(tag) {
				out[w] = true
			}
		}
		return out
	}
	for _, n := range g.Nodes() {
		if p.Holds(n) {
			out[n.Word()] = true
		}
	}
	return out
}

// InMemoryQuerier adapts a Matcher and a built Graph to PathQuerier.
type InMemoryQuerier struct {
	Graph   *cooccurrence.Graph
	Matcher *Matcher
}

// FindPaths implements PathQuerier.
func (q InMemoryQuerier) FindPaths(ctx context.Context, pq PathQuery) ([]CandidatePath, error) {
	return q.Matcher.Match(ctx, q.Graph, pq)
}

// ─────────────────────────────────────────────────────────────────────────────
// DFS
// ─────────────────────────────────────────────────────────────────────────────

type search struct {
	ctx       context.Context
	graph     *cooccurrence.Graph
	query     PathQuery
	templates *TemplateSet
	ends      map[string]bool

	// total counts matches across every start word of the query.
	total *atomic.Int64

	path    []string
	visited map[string]bool
	found   []CandidatePath
}

// walk extends the current path with word; edges is the edge count of the
// path once word is appended.
func (s *search) walk(word string, edges int) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	s.path = append(s.path, word)
	s.visited[word] = true
	defer func() {
		s.path = s.path[:len(s.path)-1]
		delete(s.visited, word)
	}()

	if edges >= s.query.Bounds.Min && s.ends[word] {
		if err := s.record(edges); err != nil {
			return err
		}
	}
	if edges == s.query.Bounds.Max {
		return nil
	}
	for _, next := range s.graph.Successors(word) {
		if s.visited[next] {
			continue
		}
		if err := s.walk(next, edges+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) record(edges int) error {
	interior := s.path[1 : len(s.path)-1]
	tags := make([]pos.Tag, len(interior))
	for i, w := range interior {
		n, _ := s.graph.Node(w)
		tags[i] = n.Tag()
	}
	names := s.templates.Match(tags)
	if len(names) == 0 {
		return nil
	}
	if n := s.total.Add(1); s.query.Limit > 0 && n > int64(s.query.Limit) {
		return errors.CandidateLimit(s.query.Limit)
	}

	nodes := make([]PathNode, len(s.path))
	for i, w := range s.path {
		n, _ := s.graph.Node(w)
		nodes[i] = PathNode{Word: w, Tag: n.Tag(), Occurrences: n.Occurrences()}
	}
	s.found = append(s.found, CandidatePath{Nodes: nodes, Length: edges, Templates: names})
	return nil
}

// MergePaths unions path sets by node sequence, keeping every matched
// template name, and sorts the result by joined words.  Store-backed
// queriers use it to return paths in the same order as Matcher.
func MergePaths(groups ...[]CandidatePath) []CandidatePath { return mergePaths(groups) }

func mergePaths(groups [][]CandidatePath) []CandidatePath {
	byKey := make(map[string]int)
	var out []CandidatePath
	for _, group := range groups {
		for _, p := range group {
			k := p.key()
			if i, ok := byKey[k]; ok {
				out[i].Templates = unionNames(out[i].Templates, p.Templates)
				continue
			}
			byKey[k] = len(out)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key() < out[j].key() })
	return out
}

func unionNames(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, n := range a {
		seen[n] = true
	}
	for _, n := range b {
		if !seen[n] {
			a = append(a, n)
			seen[n] = true
		}
	}
	return a
}

//Personal.AI order the ending
