package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cko-commerce/webhook-service/pkg/logger"
)

const defaultRetentionDays = 7

// WebhookRetentionJobParams configure the pending webhook sweeper.
type WebhookRetentionJobParams struct {
	Logger          *logger.Logger
	Repository      retentionQueueRepo
	ProcessedDays   int
	UnprocessedDays int
}

type retentionQueueRepo interface {
	PurgeProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeUnprocessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewWebhookRetentionJob builds the job that bounds the pending webhook
// queue: replayed rows past their window, and orphaned rows whose order
// never appeared.
func NewWebhookRetentionJob(params WebhookRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("queue repository required")
	}
	processedDays := params.ProcessedDays
	if processedDays <= 0 {
		processedDays = defaultRetentionDays
	}
	unprocessedDays := params.UnprocessedDays
	if unprocessedDays <= 0 {
		unprocessedDays = defaultRetentionDays
	}
	return &webhookRetentionJob{
		logg:            params.Logger,
		repo:            params.Repository,
		processedDays:   processedDays,
		unprocessedDays: unprocessedDays,
		now:             time.Now,
	}, nil
}

type webhookRetentionJob struct {
	logg            *logger.Logger
	repo            retentionQueueRepo
	processedDays   int
	unprocessedDays int
	now             func() time.Time
}

func (j *webhookRetentionJob) Name() string { return "webhook-retention" }

func (j *webhookRetentionJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	processedCutoff := now.Add(-time.Duration(j.processedDays) * 24 * time.Hour)
	processedDeleted, err := j.repo.PurgeProcessedBefore(ctx, processedCutoff)
	if err != nil {
		return fmt.Errorf("purge processed webhooks: %w", err)
	}

	unprocessedCutoff := now.Add(-time.Duration(j.unprocessedDays) * 24 * time.Hour)
	unprocessedDeleted, err := j.repo.PurgeUnprocessedBefore(ctx, unprocessedCutoff)
	if err != nil {
		return fmt.Errorf("purge unprocessed webhooks: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"processed_cutoff":    processedCutoff,
		"unprocessed_cutoff":  unprocessedCutoff,
		"processed_deleted":   processedDeleted,
		"unprocessed_deleted": unprocessedDeleted,
	})
	j.logg.Info(logCtx, "webhook queue retention sweep complete")
	return nil
}
