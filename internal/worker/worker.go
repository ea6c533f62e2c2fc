package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/makkenzo/content-cms-api/internal/config"
	"github.com/makkenzo/content-cms-api/internal/tasks"
	"go.uber.org/zap"
)

// NewMux routes every background task type to its handler.
func NewMux(keys tasks.KeyMaintenance, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeAPIKeyTouch, tasks.NewAPIKeyTouchHandler(keys, logger))
	mux.Handle(tasks.TypeAPIKeyExpireSweep, tasks.NewExpireSweepHandler(keys, logger))
	return mux
}

// Run starts the asynq server and the scheduler for periodic sweeps and blocks until ctx is
// cancelled or either of them fails to start.
func Run(ctx context.Context, redisOpts asynq.RedisConnOpt, cfg *config.WorkerConfig, keys tasks.KeyMaintenance, logger *zap.Logger) error {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				tasks.QueueCritical: 6,
				tasks.QueueDefault:  3,
				tasks.QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log := logger.Named("AsynqServerErrorHandler")
				log.Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	scheduler := asynq.NewScheduler(
		redisOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	sweepTask, err := tasks.NewExpireSweepTask()
	if err != nil {
		return fmt.Errorf("scheduler task creation error: %w", err)
	}
	entryID, err := scheduler.Register(cfg.SweepSchedule, sweepTask)
	if err != nil {
		return fmt.Errorf("scheduler registration error: %w", err)
	}
	logger.Info("Registered periodic api key expiry sweep", zap.String("entry_id", entryID), zap.String("schedule", cfg.SweepSchedule))

	logger.Info("Starting Asynq Server...")
	if err := srv.Start(NewMux(keys, logger)); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	logger.Info("Starting Asynq Scheduler...")
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return fmt.Errorf("asynq scheduler error: %w", err)
	}

	<-ctx.Done()

	logger.Info("Shutting down Asynq Scheduler...")
	scheduler.Shutdown()
	logger.Info("Shutting down Asynq Server...")
	srv.Shutdown()
	logger.Info("Asynq workers stopped.")
	return nil
}
