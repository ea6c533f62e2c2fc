package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeAPIKeyTouch       = "apikey:touch"
	TypeAPIKeyExpireSweep = "apikey:expire:sweep"

	// touchWindow collapses repeated uses of one key into a single pending update.
	touchWindow = time.Minute
)

type APIKeyTouchPayload struct {
	KeyID uuid.UUID `json:"key_id"`
}

type ExpireSweepPayload struct{}

func NewAPIKeyTouchTask(keyID uuid.UUID, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(APIKeyTouchPayload{KeyID: keyID})
	if err != nil {
		return nil, fmt.Errorf("marshal touch payload: %w", err)
	}

	allOpts := append([]asynq.Option{
		asynq.Unique(touchWindow),
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
	}, opts...)

	return asynq.NewTask(TypeAPIKeyTouch, payloadBytes, allOpts...), nil
}

func NewExpireSweepTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(ExpireSweepPayload{})
	if err != nil {
		return nil, err
	}

	allOpts := append([]asynq.Option{asynq.Unique(10 * time.Minute)}, opts...)
	return asynq.NewTask(TypeAPIKeyExpireSweep, payloadBytes, allOpts...), nil
}

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
