package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTodoRollover is the task type for the nightly backlog sweep.
	TaskTodoRollover = "todo:rollover"
)

// TodoRolloverPayload parameterizes a backlog sweep run.
type TodoRolloverPayload struct {
	// Before overrides the cutoff day (YYYY-MM-DD). Empty means today.
	Before string `json:"before,omitempty"`
}

// NewTodoRolloverTask constructs an Asynq task for the backlog sweep.
func NewTodoRolloverTask(payload TodoRolloverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTodoRollover, data), nil
}
