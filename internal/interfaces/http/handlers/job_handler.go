package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/storage/minio"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// ReportLoader reads archived reports.
type ReportLoader interface {
	LoadReport(ctx context.Context, key string, dest interface{}) error
}

// JobRequest is the body of POST /api/v1/jobs.  The corpus is either inline
// or a stored object named by Bucket and Key.
type JobRequest struct {
	JobID     string   `json:"job_id"`
	Sentences []string `json:"sentences"`
	Bucket    string   `json:"bucket"`
	Key       string   `json:"key"`
	Profile   string   `json:"profile"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// JobAccepted is returned once a job is queued.
type JobAccepted struct {
	JobID   string `json:"job_id"`
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// JobHandler queues asynchronous extraction jobs and serves their archived
// reports.  Either dependency may be nil, in which case its routes are not
// mounted.
type JobHandler struct {
	publisher extraction.EventPublisher
	topic     string
	reports   ReportLoader
	logger    logging.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(publisher extraction.EventPublisher, topic string, reports ReportLoader, logger logging.Logger) *JobHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &JobHandler{publisher: publisher, topic: topic, reports: reports, logger: logger}
}

// RegisterRoutes mounts the job endpoints on rg.
func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	if h.publisher != nil && h.topic != "" {
		rg.POST("/jobs", h.Submit)
	}
	if h.reports != nil {
		rg.GET("/reports/:job/:run", h.GetReport)
	}
}

// Submit handles POST /api/v1/jobs.
func (h *JobHandler) Submit(c *gin.Context) {
	var req JobRequest
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, err)
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.New().String()
	}
	payload := kafka.CorpusSubmittedPayload{
		JobID:       req.JobID,
		Sentences:   req.Sentences,
		Bucket:      req.Bucket,
		Key:         req.Key,
		Profile:     req.Profile,
		Threshold:   req.Threshold,
		SubmittedAt: time.Now().UTC(),
	}
	if err := payload.Validate(); err != nil {
		writeAppError(c, err)
		return
	}

	env, err := kafka.NewEventEnvelope(kafka.EventCorpusSubmitted, SourceAPI, payload)
	if err != nil {
		writeAppError(c, err)
		return
	}
	if err := h.publisher.PublishEvent(c.Request.Context(), h.topic, req.JobID, env); err != nil {
		h.logger.Error("failed to queue extraction job", logging.String("job_id", req.JobID), logging.Err(err))
		writeAppError(c, errors.Wrap(err, errors.ErrCodeMessageQueue, "failed to queue job"))
		return
	}

	h.logger.Info("extraction job queued", logging.String("job_id", req.JobID), logging.String("event_id", env.EventID))
	writeJSON(c, http.StatusAccepted, JobAccepted{JobID: req.JobID, EventID: env.EventID, Status: "accepted"})
}

// GetReport handles GET /api/v1/reports/:job/:run.
func (h *JobHandler) GetReport(c *gin.Context) {
	key := minio.ReportKey(c.Param("job"), c.Param("run"))

	var report extraction.Report
	if err := h.reports.LoadReport(c.Request.Context(), key, &report); err != nil {
		writeAppError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, &report)
}

//Personal.AI order the ending
