package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// UsageRecorder schedules last-used updates for API keys. Failures are logged and dropped so
// that a busy queue never fails the request that used the key.
type UsageRecorder struct {
	client Enqueuer
	logger *zap.Logger
}

func NewUsageRecorder(client Enqueuer, logger *zap.Logger) *UsageRecorder {
	return &UsageRecorder{
		client: client,
		logger: logger.Named("UsageRecorder"),
	}
}

func (r *UsageRecorder) RecordUse(ctx context.Context, keyID uuid.UUID) {
	task, err := NewAPIKeyTouchTask(keyID)
	if err != nil {
		r.logger.Error("Failed to build touch task", zap.Error(err))
		return
	}
	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return
		}
		r.logger.Warn("Failed to enqueue api key touch", zap.String("key_id", keyID.String()), zap.Error(err))
	}
}
