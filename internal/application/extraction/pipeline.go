// Package extraction runs the opinion phrase pipeline over a corpus: tag each
// sentence, build the co-occurrence graph, optionally persist it, match
// template paths and score them.
package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/phrase"
	"github.com/turtacn/OpinionGraph/internal/domain/pos"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/nlp"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// StoreLockName serialises use of the shared graph store.
const StoreLockName = "graph-store"

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// Service is the extraction use case consumed by the CLI, HTTP and worker.
type Service interface {
	Extract(ctx context.Context, in *Input) (*Report, error)
	BuildGraph(ctx context.Context, in *Input) (*GraphReport, error)
}

// GraphStore persists a graph and can answer path queries over it.
type GraphStore interface {
	cooccurrence.Repository
	phrase.PathQuerier
}

// StoreLock guards the graph store across processes.
type StoreLock interface {
	Acquire(ctx context.Context, name string) (release func(context.Context) error, err error)
}

// Cache stores finished reports.  A miss is reported as a NotFound AppError.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Metrics receives pipeline observations.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	ObserveRun(source, status string, nodes, edges, candidates, phrases int, d time.Duration)
	CacheAccess(hit bool)
	ObserveError(stage, code string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveStage(string, time.Duration)                          {}
func (nopMetrics) ObserveRun(string, string, int, int, int, int, time.Duration) {}
func (nopMetrics) CacheAccess(bool)                                             {}
func (nopMetrics) ObserveError(string, string)                                  {}

// Deps are the optional collaborators of a Pipeline.  Tagger defaults to the
// readable tagger; a nil Store keeps everything in memory.
type Deps struct {
	Tagger     nlp.Tagger
	TaggerName string
	Store      GraphStore
	Lock       StoreLock
	Cache      Cache
	CacheTTL   time.Duration
	Metrics    Metrics
	Logger     logging.Logger
}

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline
// ─────────────────────────────────────────────────────────────────────────────

// Pipeline implements Service.
type Pipeline struct {
	cfg     config.ExtractionConfig
	deps    Deps
	matcher *phrase.Matcher
	logger  logging.Logger
	now     func() time.Time
}

// NewPipeline validates cfg and wires deps.
func NewPipeline(cfg config.ExtractionConfig, deps Deps) (*Pipeline, error) {
	if cfg.QueryStore && deps.Store == nil {
		return nil, errors.InvalidConfig("query_store requires a graph store")
	}
	if deps.Tagger == nil {
		deps.Tagger = nlp.NewReadableTagger()
		deps.TaggerName = "readable"
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	logger := deps.Logger.Named("extraction")
	return &Pipeline{
		cfg:     cfg,
		deps:    deps,
		matcher: phrase.NewMatcher(cfg.MatchWorkers, logger),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// run carries one extraction through its stages.
type run struct {
	id        string
	in        *Input
	settings  Settings
	sentences []string
	nonBlank  int
	started   time.Time

	tokens [][]pos.Token
	graph  *cooccurrence.Graph
	paths  []phrase.CandidatePath
	ranked []phrase.RankedPhrase
}

func (p *Pipeline) newRun(in *Input) (*run, error) {
	if in == nil {
		return nil, errors.EmptyCorpus()
	}
	settings, err := p.resolve(in)
	if err != nil {
		return nil, err
	}
	// Blank sentences keep their slot so sentence ids match the caller's
	// indexes; they contribute no tokens.
	sentences := make([]string, len(in.Sentences))
	nonBlank := 0
	for i, s := range in.Sentences {
		if sentences[i] = strings.TrimSpace(s); sentences[i] != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		return nil, errors.EmptyCorpus()
	}
	return &run{
		id: uuid.NewString(), in: in, settings: settings,
		sentences: sentences, nonBlank: nonBlank, started: p.now(),
	}, nil
}

// resolve applies in's overrides to the configured settings.
func (p *Pipeline) resolve(in *Input) (Settings, error) {
	s := Settings{
		Profile:        p.cfg.Profile,
		StartThreshold: p.cfg.StartThreshold(),
		MaxGap:         p.cfg.MaximumPositionGap,
		MinLength:      p.cfg.MinPathLength,
		MaxLength:      p.cfg.MaxPathLength,
		MaxCandidates:  p.cfg.MaxCandidates,
		Tagger:         p.deps.TaggerName,
		QueryStore:     p.cfg.QueryStore,
	}
	if in.Profile != "" {
		if in.Profile != config.ProfileStrict && in.Profile != config.ProfileLenient {
			return s, errors.InvalidConfig("unknown profile").WithDetail("profile=" + in.Profile)
		}
		s.Profile = in.Profile
		s.StartThreshold = config.ProfileThreshold(in.Profile)
	}
	if (in.Threshold != nil && *in.Threshold < 0) || in.MaxGap < 0 {
		return s, errors.InvalidConfig("threshold and max gap must not be negative")
	}
	if in.Threshold != nil {
		s.StartThreshold = *in.Threshold
	}
	if in.MaxGap > 0 {
		s.MaxGap = in.MaxGap
	}
	if in.MinLength > 0 {
		s.MinLength = in.MinLength
	}
	if in.MaxLength > 0 {
		s.MaxLength = in.MaxLength
		if ceiling := p.cfg.MaxPathLength; ceiling > 0 && s.MaxLength > ceiling {
			p.logger.Debug("max path length clamped",
				logging.Int("requested", in.MaxLength),
				logging.Int("max_path_length", ceiling))
			s.MaxLength = ceiling
		}
	}
	if s.MaxGap < 1 {
		s.MaxGap = phrase.DefaultMaxGap
	}
	if err := s.bounds().Validate(); err != nil {
		return s, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid path length bounds")
	}
	return s, nil
}

func (s Settings) bounds() phrase.Bounds { return phrase.Bounds{Min: s.MinLength, Max: s.MaxLength} }

// CacheKey identifies a report by its settings and sentences.
func CacheKey(s Settings, sentences []string) string {
	h := sha256.New()
	enc, _ := json.Marshal(s)
	h.Write(enc)
	for _, line := range sentences {
		h.Write([]byte{'\n'})
		h.Write([]byte(line))
	}
	return "report:" + hex.EncodeToString(h.Sum(nil))
}

// Extract runs the full pipeline.  No phrases is a successful, empty report.
func (p *Pipeline) Extract(ctx context.Context, in *Input) (*Report, error) {
	r, err := p.newRun(in)
	if err != nil {
		p.fail(in, StageTotal, err)
		return nil, err
	}
	ctx = logging.ContextWithRunID(ctx, r.id)
	log := p.logger.WithContext(ctx)

	key := CacheKey(r.settings, r.sentences)
	if cached, ok := p.lookup(ctx, in, key); ok {
		log.Info("extraction served from cache", logging.String("cached_run_id", cached.RunID))
		return cached, nil
	}

	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StageTag, p.tag},
		{StageBuild, p.build},
		{StageMatch, p.match},
		{StageScore, p.score},
	}
	for _, st := range stages {
		began := time.Now()
		if err := st.fn(ctx, r); err != nil {
			p.fail(in, st.name, err)
			log.Error("extraction failed", logging.String("stage", st.name), logging.Err(err))
			return nil, err
		}
		p.deps.Metrics.ObserveStage(st.name, time.Since(began))
	}

	report := p.report(r)
	elapsed := time.Since(r.started)
	p.deps.Metrics.ObserveStage(StageTotal, elapsed)
	p.deps.Metrics.ObserveRun(report.Source, report.Status, report.Stats.Nodes, report.Stats.Edges,
		report.Stats.Candidates, report.Stats.Phrases, elapsed)
	p.store(ctx, in, key, report)

	log.Info("extraction complete",
		logging.String("source", report.Source),
		logging.String("status", report.Status),
		logging.Int("phrases", report.Stats.Phrases),
		logging.Duration("elapsed", elapsed))
	return report, nil
}

// BuildGraph tags and builds without matching.  The graph is persisted when
// PersistGraph is set and a store is wired.
func (p *Pipeline) BuildGraph(ctx context.Context, in *Input) (*GraphReport, error) {
	r, err := p.newRun(in)
	if err != nil {
		return nil, err
	}
	ctx = logging.ContextWithRunID(ctx, r.id)
	if err := p.tag(ctx, r); err != nil {
		return nil, err
	}
	if err := p.buildOnly(ctx, r); err != nil {
		return nil, err
	}
	if p.deps.Store != nil && p.cfg.PersistGraph {
		if err := p.withStore(ctx, func(ctx context.Context) error { return p.persist(ctx, r) }); err != nil {
			return nil, err
		}
	}
	return &GraphReport{
		RunID:    r.id,
		Settings: r.settings,
		Stats:    p.stats(r),
		Nodes:    r.graph.Snapshot(),
		Edges:    r.graph.Edges(),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Stages
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) tag(ctx context.Context, r *run) error {
	tokens, err := nlp.TagAll(ctx, p.deps.Tagger, r.sentences)
	if err != nil {
		return err
	}
	r.tokens = tokens
	p.logger.WithContext(ctx).Debug("corpus tagged", logging.Int("sentences", len(tokens)))
	return nil
}

func (p *Pipeline) buildOnly(_ context.Context, r *run) error {
	g, err := cooccurrence.NewBuilder(cooccurrence.NewClassifier(r.settings.StartThreshold), p.logger).Build(r.tokens)
	if err != nil {
		return err
	}
	r.graph = g
	return nil
}

// build constructs the graph and, when a store is in play, persists it.
// With QueryStore the match stage runs against that persisted copy, so both
// happen under the same lock in match.
func (p *Pipeline) build(ctx context.Context, r *run) error {
	if err := p.buildOnly(ctx, r); err != nil {
		return err
	}
	if p.deps.Store == nil || !p.cfg.PersistGraph || p.cfg.QueryStore {
		return nil
	}
	began := time.Now()
	err := p.withStore(ctx, func(ctx context.Context) error { return p.persist(ctx, r) })
	if err == nil {
		p.deps.Metrics.ObserveStage(StagePersist, time.Since(began))
	}
	return err
}

func (p *Pipeline) persist(ctx context.Context, r *run) error {
	if err := p.deps.Store.Reset(ctx); err != nil {
		return err
	}
	return p.deps.Store.SaveGraph(ctx, r.graph)
}

func (p *Pipeline) match(ctx context.Context, r *run) error {
	q := phrase.DefaultQuery(r.settings.bounds())
	q.Limit = r.settings.MaxCandidates
	if !p.cfg.QueryStore {
		paths, err := phrase.InMemoryQuerier{Graph: r.graph, Matcher: p.matcher}.FindPaths(ctx, q)
		if err != nil {
			return err
		}
		r.paths = paths
		return nil
	}

	return p.withStore(ctx, func(ctx context.Context) error {
		began := time.Now()
		if err := p.persist(ctx, r); err != nil {
			return err
		}
		p.deps.Metrics.ObserveStage(StagePersist, time.Since(began))
		paths, err := p.deps.Store.FindPaths(ctx, q)
		if err != nil {
			return err
		}
		r.paths = paths
		return nil
	})
}

func (p *Pipeline) score(ctx context.Context, r *run) error {
	r.ranked = phrase.NewScorer(r.settings.MaxGap).Rank(r.paths)
	p.logger.WithContext(ctx).Debug("paths scored",
		logging.Int("candidates", len(r.paths)),
		logging.Int("max_gap", r.settings.MaxGap))
	return nil
}

// withStore runs fn while holding the store lock, if one is wired.
func (p *Pipeline) withStore(ctx context.Context, fn func(context.Context) error) error {
	if p.deps.Lock == nil {
		return fn(ctx)
	}
	release, err := p.deps.Lock.Acquire(ctx, StoreLockName)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			p.logger.WithContext(ctx).Warn("failed to release graph store lock", logging.Err(err))
		}
	}()
	return fn(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reporting and caching
// ─────────────────────────────────────────────────────────────────────────────

func (p *Pipeline) stats(r *run) Stats {
	st := Stats{Sentences: r.nonBlank, Candidates: len(r.paths), Phrases: len(r.ranked), Returned: len(r.ranked)}
	if r.graph != nil {
		st.Nodes = r.graph.NodeCount()
		st.Edges = r.graph.EdgeCount()
		st.StartNodes = len(r.graph.StartWords())
		st.EndNodes = len(r.graph.EndWords())
	}
	return st
}

func (p *Pipeline) report(r *run) *Report {
	status := StatusOK
	if len(r.ranked) == 0 {
		status = StatusEmpty
	}
	phrases := r.ranked
	if phrases == nil {
		phrases = []phrase.RankedPhrase{}
	}
	return &Report{
		RunID:      r.id,
		JobID:      r.in.JobID,
		Source:     sourceOf(r.in),
		Status:     status,
		Settings:   r.settings,
		Stats:      p.stats(r),
		Phrases:    phrases,
		CreatedAt:  r.started.UTC(),
		DurationMS: time.Since(r.started).Milliseconds(),
	}
}

func (p *Pipeline) lookup(ctx context.Context, in *Input, key string) (*Report, bool) {
	if p.deps.Cache == nil || in.SkipCache {
		return nil, false
	}
	var cached Report
	err := p.deps.Cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		p.deps.Metrics.CacheAccess(true)
		cached.Cached = true
		cached.JobID = in.JobID
		return &cached, true
	case errors.IsNotFound(err):
		p.deps.Metrics.CacheAccess(false)
	default:
		p.deps.Metrics.CacheAccess(false)
		p.logger.WithContext(ctx).Warn("report cache lookup failed", logging.Err(err))
	}
	return nil, false
}

func (p *Pipeline) store(ctx context.Context, in *Input, key string, report *Report) {
	if p.deps.Cache == nil || in.SkipCache {
		return
	}
	if err := p.deps.Cache.Set(ctx, key, report, p.deps.CacheTTL); err != nil {
		p.logger.WithContext(ctx).Warn("report cache store failed", logging.Err(err))
	}
}

func (p *Pipeline) fail(in *Input, stage string, err error) {
	p.deps.Metrics.ObserveError(stage, errors.GetCode(err).String())
	p.deps.Metrics.ObserveRun(sourceOf(in), StatusError, 0, 0, 0, 0, 0)
}

func sourceOf(in *Input) string {
	if in == nil || in.Source == "" {
		return "unknown"
	}
	return in.Source
}

//Personal.AI order the ending
