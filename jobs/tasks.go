package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPeriodClose closes a billing period by building invoices for
	// every vendor that had revenue activity in it.
	TaskPeriodClose = "settlement:period_close"
)

// PeriodClosePayload selects the period to close. An empty PeriodKey means
// the previous calendar month relative to execution time.
type PeriodClosePayload struct {
	PeriodKey string `json:"period_key,omitempty"`
}

// NewPeriodCloseTask constructs an Asynq task for closing a period.
func NewPeriodCloseTask(payload PeriodClosePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPeriodClose, data), nil
}
