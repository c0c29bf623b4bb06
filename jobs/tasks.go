package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tripdesk/tripdesk/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNotify is the task type for user-facing notifications.
	TaskTypeNotify = "notify:send"
)

// Notification kinds.
const (
	KindTripApplication = "trip_application"
	KindRoomAllotted    = "room_allotted"
)

// Notification describes a message for one recipient.
type Notification struct {
	Kind      string `json:"kind"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Reference string `json:"reference,omitempty"`
}

// NewNotificationTask constructs an Asynq task.
func NewNotificationTask(n Notification) (*asynq.Task, error) {
	if n.Kind == "" || n.Recipient == "" {
		return nil, fmt.Errorf("jobs: notification requires kind and recipient")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotify, data), nil
}

// NotificationHandler processes TaskTypeNotify tasks. Delivery is a structured
// log line; malformed payloads are not retried.
func NotificationHandler(logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeNotify)
		var n Notification
		if err := json.Unmarshal(t.Payload(), &n); err != nil {
			return tracker.End(fmt.Errorf("jobs: decode notification: %v: %w", err, asynq.SkipRetry))
		}
		logger.InfoContext(ctx, "notification delivered",
			slog.String("kind", n.Kind),
			slog.String("recipient", n.Recipient),
			slog.String("subject", n.Subject),
			slog.String("reference", n.Reference))
		metrics.NotificationDelivered(n.Kind)
		return tracker.End(nil)
	}
}
