package extraction

import (
	"time"

	"github.com/turtacn/OpinionGraph/internal/domain/cooccurrence"
	"github.com/turtacn/OpinionGraph/internal/domain/phrase"
)

// Run outcomes recorded in metrics and reports.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Pipeline stage names.
const (
	StageTag     = "tag"
	StageBuild   = "build"
	StagePersist = "persist"
	StageMatch   = "match"
	StageScore   = "score"
	StageTotal   = "total"
)

// Input is one extraction request.  Zero-valued overrides fall back to the
// configured extraction settings.  MaxLength is clamped to the configured
// max_path_length.
type Input struct {
	// Sentences are fed to the tagger one by one.  A sentence's index is its
	// sentence id, so errors locate it in this slice.  Blank entries keep
	// their id and contribute no tokens.
	Sentences []string

	// Source labels the caller in logs and metrics ("cli", "api", "worker").
	Source string
	JobID  string

	// Threshold overrides the start threshold when non-nil; zero is usable.
	Profile   string
	Threshold *float64
	MaxGap    int
	MinLength int
	MaxLength int

	// SkipCache bypasses the report cache for both lookup and store.
	SkipCache bool
}

// Settings are the effective parameters of a run.
type Settings struct {
	Profile        string  `json:"profile,omitempty"`
	StartThreshold float64 `json:"start_threshold"`
	MaxGap         int     `json:"max_gap"`
	MinLength      int     `json:"min_length"`
	MaxLength      int     `json:"max_length"`
	MaxCandidates  int     `json:"max_candidates"`
	Tagger         string  `json:"tagger"`
	QueryStore     bool    `json:"query_store"`
}

// Stats counts what a run produced.
type Stats struct {
	Sentences  int `json:"sentences"`
	Nodes      int `json:"nodes"`
	Edges      int `json:"edges"`
	StartNodes int `json:"start_nodes"`
	EndNodes   int `json:"end_nodes"`
	Candidates int `json:"candidates"`
	Phrases    int `json:"phrases"`
	Returned   int `json:"returned"`
}

// Report is the result of Extract.
type Report struct {
	RunID      string                `json:"run_id"`
	JobID      string                `json:"job_id,omitempty"`
	Source     string                `json:"source"`
	Status     string                `json:"status"`
	Settings   Settings              `json:"settings"`
	Stats      Stats                 `json:"stats"`
	Phrases    []phrase.RankedPhrase `json:"phrases"`
	Cached     bool                  `json:"cached"`
	CreatedAt  time.Time             `json:"created_at"`
	DurationMS int64                 `json:"duration_ms"`
}

// Truncate keeps the n best phrases; n <= 0 keeps them all.  Stats.Phrases
// still counts every ranked phrase and Stats.Returned the ones kept.
func (r *Report) Truncate(n int) {
	if n > 0 && len(r.Phrases) > n {
		r.Phrases = r.Phrases[:n]
	}
	r.Stats.Returned = len(r.Phrases)
}

// GraphReport is the result of BuildGraph.
type GraphReport struct {
	RunID    string                      `json:"run_id"`
	Settings Settings                    `json:"settings"`
	Stats    Stats                       `json:"stats"`
	Nodes    []cooccurrence.NodeSnapshot `json:"nodes"`
	Edges    []cooccurrence.Edge         `json:"edges"`
}

//Personal.AI order the ending
