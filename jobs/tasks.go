// Package jobs contains background task definitions and the Asynq worker
// that processes them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotIntegrity triggers the nightly snapshot repair pass.
	TaskSnapshotIntegrity = "snapshot:integrity"
)

// SnapshotIntegrityPayload carries scheduling metadata.
type SnapshotIntegrityPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSnapshotIntegrityTask constructs an Asynq task for the repair pass.
func NewSnapshotIntegrityTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SnapshotIntegrityPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotIntegrity, body, asynq.Queue(QueueDefault)), nil
}
