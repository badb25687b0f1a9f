package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/creatorlink/creatorlink/internal/jobs"
)

// SessionPruner removes expired session records and reports how many went.
type SessionPruner interface {
	PruneSessions(ctx context.Context) (int64, error)
}

// SessionsPruneJob deletes expired rows from the session audit trail.
type SessionsPruneJob struct {
	Pruner  SessionPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSessionsPruneJob initialises the prune handler.
func NewSessionsPruneJob(pruner SessionPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionsPruneJob {
	return &SessionsPruneJob{Pruner: pruner, Logger: logger, Metrics: metrics}
}

// Handle executes one prune run.
func (j *SessionsPruneJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Pruner == nil {
		return errors.New("sessions prune: handler not configured")
	}
	var payload SessionsPrunePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("sessions prune: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.Metrics.Track(TaskSessionsPrune)
	defer func() {
		err = tracker.End(err)
	}()

	removed, err := j.Pruner.PruneSessions(ctx)
	if err != nil {
		return fmt.Errorf("sessions prune: %w", err)
	}
	j.Metrics.AddPruned("audit", removed)
	j.logger().Info("sessions pruned",
		slog.Int64("removed", removed),
		slog.Time("requested_at", payload.RequestedAt))
	return nil
}

func (j *SessionsPruneJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
