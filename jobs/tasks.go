package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPrune removes expired session audit records.
	TaskSessionsPrune = "sessions:prune"
)

// SessionsPrunePayload is the body of a prune task. RequestedAt only ends up
// in the job log.
type SessionsPrunePayload struct {
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// NewSessionsPruneTask constructs an Asynq task.
func NewSessionsPruneTask(payload SessionsPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPrune, data, asynq.MaxRetry(3), asynq.Timeout(time.Minute)), nil
}
