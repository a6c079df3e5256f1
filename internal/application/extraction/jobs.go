package extraction

import (
	"context"
	"time"

	"github.com/turtacn/OpinionGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/storage/minio"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// SourceWorker labels runs started from the job queue.
const SourceWorker = "worker"

// CorpusSource loads stored corpora, one sentence per line.
type CorpusSource interface {
	LoadCorpus(ctx context.Context, bucket, key string) ([]string, error)
}

// ReportArchive keeps finished reports.
type ReportArchive interface {
	SaveReport(ctx context.Context, key string, report interface{}, meta map[string]string) (*minio.UploadResult, error)
}

// EventPublisher publishes envelopes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, env *kafka.EventEnvelope) error
}

// JobProcessor turns corpus.submitted events into phrases.ranked events.
type JobProcessor struct {
	service     Service
	corpora     CorpusSource
	archive     ReportArchive
	publisher   EventPublisher
	resultTopic string
	logger      logging.Logger
}

// JobProcessorConfig wires a JobProcessor.  Corpora and Archive may be nil when
// object storage is disabled; such jobs must carry inline sentences.
type JobProcessorConfig struct {
	Service     Service
	Corpora     CorpusSource
	Archive     ReportArchive
	Publisher   EventPublisher
	ResultTopic string
	Logger      logging.Logger
}

// NewJobProcessor validates cfg.
func NewJobProcessor(cfg JobProcessorConfig) (*JobProcessor, error) {
	if cfg.Service == nil {
		return nil, errors.InvalidParam("extraction service is required")
	}
	if cfg.Publisher == nil || cfg.ResultTopic == "" {
		return nil, errors.InvalidParam("result publisher and topic are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	return &JobProcessor{
		service:     cfg.Service,
		corpora:     cfg.Corpora,
		archive:     cfg.Archive,
		publisher:   cfg.Publisher,
		resultTopic: cfg.ResultTopic,
		logger:      cfg.Logger.Named("jobs"),
	}, nil
}

// Handle is a kafka.MessageHandler.  Malformed jobs fail with a validation
// code so the consumer dead-letters them without retrying.  Extraction
// failures caused by the corpus itself are reported as an error result and
// acknowledged; infrastructure failures are returned for retry.
func (p *JobProcessor) Handle(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "undecodable job")
	}
	if env.EventType != kafka.EventCorpusSubmitted {
		return errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	var job kafka.CorpusSubmittedPayload
	if err := env.DecodePayload(&job); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "undecodable job payload")
	}
	if err := job.Validate(); err != nil {
		return err
	}

	log := p.logger.With(logging.String("job_id", job.JobID))
	sentences, err := p.sentences(ctx, job)
	if err != nil {
		return err
	}

	report, err := p.service.Extract(ctx, &Input{
		Sentences: sentences,
		Source:    SourceWorker,
		JobID:     job.JobID,
		Profile:   job.Profile,
		Threshold: job.Threshold,
	})
	if err != nil {
		if !isCorpusFault(err) {
			return err
		}
		log.Warn("job rejected", logging.Err(err))
		return p.publish(ctx, env, kafka.PhrasesRankedPayload{
			JobID:       job.JobID,
			Status:      StatusError,
			Error:       err.Error(),
			CompletedAt: time.Now().UTC(),
		}, "")
	}

	result := kafka.PhrasesRankedPayload{
		JobID:       job.JobID,
		RunID:       report.RunID,
		Status:      report.Status,
		Phrases:     report.Phrases,
		CompletedAt: time.Now().UTC(),
	}
	if p.archive != nil {
		key := minio.ReportKey(job.JobID, report.RunID)
		if _, err := p.archive.SaveReport(ctx, key, report, map[string]string{"job-id": job.JobID}); err != nil {
			return err
		}
		result.ReportKey = key
	}
	log.Info("job complete", logging.String("run_id", report.RunID), logging.Int("phrases", len(report.Phrases)))
	return p.publish(ctx, env, result, report.RunID)
}

func (p *JobProcessor) sentences(ctx context.Context, job kafka.CorpusSubmittedPayload) ([]string, error) {
	if len(job.Sentences) > 0 {
		return job.Sentences, nil
	}
	if p.corpora == nil {
		return nil, errors.InvalidParam("stored corpora are not available").WithDetail("key=" + job.Key)
	}
	return p.corpora.LoadCorpus(ctx, job.Bucket, job.Key)
}

func (p *JobProcessor) publish(ctx context.Context, req *kafka.EventEnvelope, result kafka.PhrasesRankedPayload, runID string) error {
	env, err := kafka.NewEventEnvelope(kafka.EventPhrasesRanked, SourceWorker, result)
	if err != nil {
		return err
	}
	env.RunID = runID
	env.Metadata = map[string]string{"request_event_id": req.EventID}
	return p.publisher.PublishEvent(ctx, p.resultTopic, result.JobID, env)
}

func isCorpusFault(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeEmptyCorpus, errors.ErrCodeTagging, errors.ErrCodeInvalidConfig, errors.ErrCodeNotFound:
		return true
	}
	return false
}

//Personal.AI order the ending
