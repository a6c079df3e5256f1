// Package repositories implements the graph store contracts of the domain
// packages on top of Neo4j.
package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/phrase"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	driver "github.com/turtacn/OpinionGraph/internal/infrastructure/database/neo4j"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// Words are stored as (:Word {word, tag, sym, pri, vsn, ven}) and edges as
// [:CO_OCCURRENCE].  sym is the single-rune tag symbol matched by template
// patterns; pri holds "sid:pid" occurrence strings.
const (
	wordLabel = "Word"
	edgeType  = "CO_OCCURRENCE"

	defaultBatchSize = 500
)

var schemaStatements = []string{
	`CREATE CONSTRAINT word_unique IF NOT EXISTS FOR (w:Word) REQUIRE w.word IS UNIQUE`,
	`CREATE INDEX word_tag IF NOT EXISTS FOR (w:Word) ON (w.tag)`,
}

const mergeNodesCypher = `
UNWIND $nodes AS n
MERGE (w:Word {word: n.word})
SET w.tag = n.tag, w.sym = n.sym, w.pri = n.pri, w.vsn = n.vsn, w.ven = n.ven`

const mergeEdgesCypher = `
UNWIND $edges AS e
MATCH (a:Word {word: e.from}), (b:Word {word: e.to})
MERGE (a)-[:CO_OCCURRENCE]->(b)`

const resetCypher = `MATCH (w:Word) DETACH DELETE w`

// CooccurrenceRepository persists co-occurrence graphs and answers path
// queries against them in Cypher.
type CooccurrenceRepository struct {
	driver    driver.DriverInterface
	batchSize int
	log       logging.Logger
}

var (
	_ cooccurrence.Repository = (*CooccurrenceRepository)(nil)
	_ phrase.PathQuerier      = (*CooccurrenceRepository)(nil)
)

// NewCooccurrenceRepository returns a repository writing batchSize rows per
// UNWIND statement.  batchSize <= 0 means 500.
func NewCooccurrenceRepository(d driver.DriverInterface, batchSize int, log logging.Logger) *CooccurrenceRepository {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CooccurrenceRepository{driver: d, batchSize: batchSize, log: log}
}

// EnsureSchema creates the uniqueness constraint on word and the tag index.
// Schema statements cannot share a transaction with each other, so each runs
// in its own.
func (r *CooccurrenceRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		stmt := stmt
		_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
			return nil, run(ctx, tx, stmt, nil)
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeGraphStore, "failed to ensure graph schema")
		}
	}
	return nil
}

// SaveGraph merges every node and then every edge of g in one write
// transaction.
func (r *CooccurrenceRepository) SaveGraph(ctx context.Context, g *cooccurrence.Graph) error {
	nodes := nodeRows(g)
	edges := edgeRows(g)
	started := time.Now()

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		for _, batch := range chunk(nodes, r.batchSize) {
			if err := run(ctx, tx, mergeNodesCypher, map[string]any{"nodes": batch}); err != nil {
				return nil, err
			}
		}
		for _, batch := range chunk(edges, r.batchSize) {
			if err := run(ctx, tx, mergeEdgesCypher, map[string]any{"edges": batch}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphStore, "failed to save co-occurrence graph")
	}

	r.log.WithContext(ctx).Info("co-occurrence graph saved",
		logging.Int("nodes", len(nodes)),
		logging.Int("edges", len(edges)),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

// Reset deletes every word node and its edges.
func (r *CooccurrenceRepository) Reset(ctx context.Context) error {
	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		return nil, run(ctx, tx, resetCypher, nil)
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeGraphStore, "failed to reset graph store")
	}
	return nil
}

// FindPaths implements phrase.PathQuerier.  The store filters paths by
// endpoint flags, node uniqueness and the anchored template patterns; the
// matched template names are recomputed locally so results carry the same
// fields as the in-memory matcher.
func (r *CooccurrenceRepository) FindPaths(ctx context.Context, q phrase.PathQuery) ([]phrase.CandidatePath, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid path query")
	}
	set, err := phrase.CompileTemplates(q.Templates)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid template")
	}

	cypher := PathQueryCypher(q)
	patterns := make([]string, len(q.Templates))
	for i, t := range q.Templates {
		patterns[i] = t.AnchoredPattern()
	}

	out, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"patterns": patterns})
		if err != nil {
			return nil, err
		}
		return driver.CollectRecords(ctx, res, func(rec *neo4j.Record) (phrase.CandidatePath, error) {
			return decodePath(rec, set)
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphStore, "path query failed")
	}

	paths, _ := out.([]phrase.CandidatePath)
	if q.Limit > 0 && len(paths) > q.Limit {
		return nil, errors.CandidateLimit(q.Limit)
	}
	matched := paths[:0]
	for _, p := range paths {
		if len(p.Templates) > 0 {
			matched = append(matched, p)
		}
	}
	return phrase.MergePaths(matched), nil
}

// PathQueryCypher renders q as Cypher.  Variable-length bounds and property
// names cannot be parameters, so they are interpolated from the validated
// query; template patterns are passed as $patterns.  A capped query fetches
// one row past the cap so an overflow can be detected.
func PathQueryCypher(q phrase.PathQuery) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "MATCH path = (s:%s)-[:%s*%d..%d]->(e:%s)\n",
		wordLabel, edgeType, q.Bounds.Min, q.Bounds.Max, wordLabel)
	fmt.Fprintf(&sb, "WHERE s.%s = true AND e.%s = true\n", q.Start, q.End)
	sb.WriteString("  AND all(n IN nodes(path) WHERE single(m IN nodes(path) WHERE m = n))\n")
	sb.WriteString("WITH path, reduce(acc = '', n IN nodes(path)[1..-1] | acc + n.sym) AS syms\n")
	sb.WriteString("WHERE any(p IN $patterns WHERE syms =~ p)\n")
	sb.WriteString("RETURN [n IN nodes(path) | n.word] AS words,\n")
	sb.WriteString("       [n IN nodes(path) | n.tag] AS tags,\n")
	sb.WriteString("       [n IN nodes(path) | n.pri] AS pri")
	if q.Limit > 0 {
		fmt.Fprintf(&sb, "\nLIMIT %d", q.Limit+1)
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Encoding
// ─────────────────────────────────────────────────────────────────────────────

func nodeRows(g *cooccurrence.Graph) []map[string]any {
	nodes := g.Nodes()
	rows := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		rows[i] = map[string]any{
			"word": n.Word(),
			"tag":  n.Tag().String(),
			"sym":  string(n.Tag().Symbol()),
			"pri":  cooccurrence.FormatPRI(n.Occurrences()),
			"vsn":  n.ValidStart(),
			"ven":  n.ValidEnd(),
		}
	}
	return rows
}

func edgeRows(g *cooccurrence.Graph) []map[string]any {
	edges := g.Edges()
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		rows[i] = map[string]any{"from": e.From, "to": e.To}
	}
	return rows
}

func chunk(rows []map[string]any, size int) [][]map[string]any {
	var out [][]map[string]any
	for len(rows) > size {
		out = append(out, rows[:size])
		rows = rows[size:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}

func run(ctx context.Context, tx driver.Transaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func decodePath(rec *neo4j.Record, set *phrase.TemplateSet) (phrase.CandidatePath, error) {
	words, err := stringList(rec, "words")
	if err != nil {
		return phrase.CandidatePath{}, err
	}
	tags, err := stringList(rec, "tags")
	if err != nil {
		return phrase.CandidatePath{}, err
	}
	rawPRI, _ := rec.Get("pri")
	pris, ok := rawPRI.([]any)
	if !ok || len(words) != len(tags) || len(words) != len(pris) {
		return phrase.CandidatePath{}, errors.InvariantViolation("malformed path record")
	}

	nodes := make([]phrase.PathNode, len(words))
	for i := range words {
		pri, err := toStrings(pris[i])
		if err != nil {
			return phrase.CandidatePath{}, err
		}
		occ, err := cooccurrence.ParsePRI(pri)
		if err != nil {
			return phrase.CandidatePath{}, errors.Wrap(err, errors.ErrCodeInvariantViolation, "malformed occurrence").
				WithDetail(fmt.Sprintf("word=%q", words[i]))
		}
		nodes[i] = phrase.PathNode{Word: words[i], Tag: decodeTag(tags[i]), Occurrences: occ}
	}

	p := phrase.CandidatePath{Nodes: nodes, Length: len(nodes) - 1}
	interior := p.Interior()
	itags := make([]pos.Tag, len(interior))
	for i, n := range interior {
		itags[i] = n.Tag
	}
	p.Templates = set.Match(itags)
	return p, nil
}

func decodeTag(s string) pos.Tag {
	switch s {
	case "unknown":
		return pos.Unknown
	case "other":
		return pos.Other
	}
	return pos.ParseTag(s)
}

func stringList(rec *neo4j.Record, key string) ([]string, error) {
	v, ok := rec.Get(key)
	if !ok {
		return nil, errors.InvariantViolation("path record has no " + key)
	}
	return toStrings(v)
}

func toStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errors.InvariantViolation(fmt.Sprintf("expected string, got %T", item))
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, errors.InvariantViolation(fmt.Sprintf("expected list, got %T", v))
	}
}

//Personal.AI order the ending
