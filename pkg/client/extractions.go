package client

import (
	"context"
	"net/url"
	"time"
)

// ExtractionRequest asks for one synchronous extraction.  Set exactly one of
// Sentences or Corpus; Corpus holds one tagged sentence per line.
type ExtractionRequest struct {
	Sentences []string `json:"sentences,omitempty"`
	Corpus    string   `json:"corpus,omitempty"`
	Profile   string   `json:"profile,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	MaxGap    int      `json:"max_gap,omitempty"`
	MinLength int      `json:"min_length,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Top       int      `json:"top,omitempty"`
	SkipCache bool     `json:"skip_cache,omitempty"`
}

// Phrase is one ranked opinion phrase.
type Phrase struct {
	Score     float64  `json:"score"`
	Words     []string `json:"words"`
	Tags      []string `json:"tags"`
	Length    int      `json:"length"`
	Overlap   int      `json:"overlap"`
	Templates []string `json:"templates,omitempty"`
}

// Settings are the effective parameters of a run.
type Settings struct {
	Profile        string  `json:"profile,omitempty"`
	StartThreshold float64 `json:"start_threshold"`
	MaxGap         int     `json:"max_gap"`
	MinLength      int     `json:"min_length"`
	MaxLength      int     `json:"max_length"`
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

// Report is the outcome of an extraction.
type Report struct {
	RunID      string    `json:"run_id"`
	JobID      string    `json:"job_id,omitempty"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Settings   Settings  `json:"settings"`
	Stats      Stats     `json:"stats"`
	Phrases    []Phrase  `json:"phrases"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Node is one word of the co-occurrence graph.
type Node struct {
	Word       string   `json:"word"`
	Tag        string   `json:"tag"`
	PRI        []string `json:"pri"`
	ValidStart bool     `json:"vsn"`
	ValidEnd   bool     `json:"ven"`
}

// Edge links two consecutive words.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the co-occurrence graph of a corpus.
type Graph struct {
	RunID    string   `json:"run_id"`
	Settings Settings `json:"settings"`
	Stats    Stats    `json:"stats"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}

// JobRequest queues an asynchronous extraction.  Set Sentences, or Key (and
// optionally Bucket) naming a stored corpus.
type JobRequest struct {
	JobID     string   `json:"job_id,omitempty"`
	Sentences []string `json:"sentences,omitempty"`
	Bucket    string   `json:"bucket,omitempty"`
	Key       string   `json:"key,omitempty"`
	Profile   string   `json:"profile,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// JobAccepted acknowledges a queued job.
type JobAccepted struct {
	JobID   string `json:"job_id"`
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// Health is the liveness probe response.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Extract runs a synchronous extraction.
func (c *Client) Extract(ctx context.Context, req *ExtractionRequest) (*Report, error) {
	var report Report
	if err := c.post(ctx, "/api/v1/extractions", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// BuildGraph returns the co-occurrence graph of a corpus.
func (c *Client) BuildGraph(ctx context.Context, req *ExtractionRequest) (*Graph, error) {
	var graph Graph
	if err := c.post(ctx, "/api/v1/graphs", req, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// SubmitJob queues an extraction for the worker.
func (c *Client) SubmitJob(ctx context.Context, req *JobRequest) (*JobAccepted, error) {
	var accepted JobAccepted
	if err := c.post(ctx, "/api/v1/jobs", req, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// GetReport fetches the archived report of a finished job run.
func (c *Client) GetReport(ctx context.Context, jobID, runID string) (*Report, error) {
	var report Report
	path := "/api/v1/reports/" + url.PathEscape(jobID) + "/" + url.PathEscape(runID)
	if err := c.get(ctx, path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/healthz", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

//Personal.AI order the ending
