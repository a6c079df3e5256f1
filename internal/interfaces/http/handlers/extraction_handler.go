package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/nlp"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// SourceAPI labels runs started over HTTP.
const SourceAPI = "api"

// ExtractionRequest is the body of POST /api/v1/extractions and
// POST /api/v1/graphs.  Exactly one of Sentences or Corpus is expected;
// Corpus holds one sentence per line.
type ExtractionRequest struct {
	Sentences []string `json:"sentences"`
	Corpus    string   `json:"corpus"`
	Profile   string   `json:"profile"`
	Threshold *float64 `json:"threshold"`
	MaxGap    int      `json:"max_gap"`
	MinLength int      `json:"min_length"`
	MaxLength int      `json:"max_length"`
	Top       int      `json:"top"`
	SkipCache bool     `json:"skip_cache"`
}

func (r *ExtractionRequest) input() (*extraction.Input, error) {
	if len(r.Sentences) > 0 && r.Corpus != "" {
		return nil, errors.InvalidParam("only one of sentences or corpus may be set")
	}
	if r.Top < 0 {
		return nil, errors.InvalidParam("top must not be negative")
	}
	sentences := r.Sentences
	if r.Corpus != "" {
		var err error
		if sentences, err = nlp.ReadCorpus(strings.NewReader(r.Corpus)); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read corpus")
		}
	}
	return &extraction.Input{
		Sentences: sentences,
		Source:    SourceAPI,
		Profile:   r.Profile,
		Threshold: r.Threshold,
		MaxGap:    r.MaxGap,
		MinLength: r.MinLength,
		MaxLength: r.MaxLength,
		SkipCache: r.SkipCache,
	}, nil
}

// ExtractionHandler serves synchronous extraction requests.
type ExtractionHandler struct {
	service extraction.Service
	logger  logging.Logger
}

// NewExtractionHandler creates an ExtractionHandler.
func NewExtractionHandler(service extraction.Service, logger logging.Logger) *ExtractionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ExtractionHandler{service: service, logger: logger}
}

// RegisterRoutes mounts the extraction endpoints on rg.
func (h *ExtractionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extractions", h.Extract)
	rg.POST("/graphs", h.BuildGraph)
}

// Extract handles POST /api/v1/extractions.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req ExtractionRequest
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeAppError(c, err)
		return
	}

	report, err := h.service.Extract(c.Request.Context(), in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	report.Truncate(req.Top)
	writeJSON(c, http.StatusOK, report)
}

// BuildGraph handles POST /api/v1/graphs.
func (h *ExtractionHandler) BuildGraph(c *gin.Context) {
	var req ExtractionRequest
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeAppError(c, err)
		return
	}

	graph, err := h.service.BuildGraph(c.Request.Context(), in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, graph)
}

//Personal.AI order the ending
