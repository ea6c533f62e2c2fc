package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// KeyMaintenance is the slice of the api key service the workers need.
type KeyMaintenance interface {
	TouchAPIKey(ctx context.Context, id uuid.UUID, at time.Time) error
	DeactivateExpired(ctx context.Context) (int, error)
}

type APIKeyTouchHandler struct {
	keys   KeyMaintenance
	now    func() time.Time
	logger *zap.Logger
}

func NewAPIKeyTouchHandler(keys KeyMaintenance, logger *zap.Logger) *APIKeyTouchHandler {
	return &APIKeyTouchHandler{
		keys:   keys,
		now:    time.Now,
		logger: logger.Named("APIKeyTouchHandler"),
	}
}

func (h *APIKeyTouchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeAPIKeyTouch {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p APIKeyTouchPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.logger.Error("Failed to unmarshal api key touch payload", zap.Error(err), zap.ByteString("payload", t.Payload()))
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.KeyID == uuid.Nil {
		return fmt.Errorf("touch payload without key id: %w", asynq.SkipRetry)
	}

	if err := h.keys.TouchAPIKey(ctx, p.KeyID, h.now()); err != nil {
		h.logger.Warn("Failed to record api key use", zap.String("key_id", p.KeyID.String()), zap.Error(err))
		return fmt.Errorf("touch api key %s: %w", p.KeyID, err)
	}
	h.logger.Debug("API key use recorded", zap.String("key_id", p.KeyID.String()))
	return nil
}

type ExpireSweepHandler struct {
	keys   KeyMaintenance
	logger *zap.Logger
}

func NewExpireSweepHandler(keys KeyMaintenance, logger *zap.Logger) *ExpireSweepHandler {
	return &ExpireSweepHandler{
		keys:   keys,
		logger: logger.Named("ExpireSweepHandler"),
	}
}

func (h *ExpireSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeAPIKeyExpireSweep {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	h.logger.Info("Processing api key expiry sweep...")
	n, err := h.keys.DeactivateExpired(ctx)
	if err != nil {
		h.logger.Error("API key expiry sweep failed", zap.Error(err))
		return err
	}
	h.logger.Info("API key expiry sweep finished", zap.Int("deactivated", n))
	return nil
}
