package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/tripdesk/tripdesk/internal/jobs"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Queue: QueueDefault, Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestClientNotifyEnqueuesTask(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWith(enq)

	err := client.Notify(context.Background(), Notification{
		Kind:      KindRoomAllotted,
		Recipient: "alice@x.com",
		Subject:   "Room 101",
		Reference: "trip-1",
	})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskTypeNotify, enq.tasks[0].Type())

	var got Notification
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &got))
	assert.Equal(t, "alice@x.com", got.Recipient)
	assert.Equal(t, KindRoomAllotted, got.Kind)
}

func TestClientNotifyErrors(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis down")}
	client := NewClientWith(enq)

	err := client.Notify(context.Background(), Notification{Kind: KindTripApplication, Recipient: "a@x.com"})
	assert.Error(t, err)

	err = NewClientWith(&fakeEnqueuer{}).Notify(context.Background(), Notification{Kind: KindTripApplication})
	assert.Error(t, err, "recipient required")

	var nilClient *Client
	assert.NoError(t, nilClient.Notify(context.Background(), Notification{}))
	assert.NoError(t, nilClient.Close())
}

func TestNotificationHandler(t *testing.T) {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	handler := NotificationHandler(quietLogger(), metrics)

	task, err := NewNotificationTask(Notification{Kind: KindTripApplication, Recipient: "a@x.com"})
	require.NoError(t, err)
	assert.NoError(t, handler(context.Background(), task))

	err = handler(context.Background(), asynq.NewTask(TaskTypeNotify, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestJobsHealth(t *testing.T) {
	tests := []struct {
		name      string
		inspector QueueInspector
		code      int
		pending   float64
	}{
		{"no queue", nil, http.StatusOK, 0},
		{"queue", fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3}}, http.StatusOK, 3},
		{"queue error", fakeInspector{err: errors.New("down")}, http.StatusServiceUnavailable, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tt.inspector, quietLogger()).MountRoutes(r)
			res := httptest.NewRecorder()
			r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.code, res.Code)
			if tt.code == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
				assert.Equal(t, tt.pending, body["pending"])
			}
		})
	}
}

func TestNewWorkerRoutesNotificationsOnly(t *testing.T) {
	w, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}, Logger: quietLogger()})
	require.NoError(t, err)

	_, pattern := w.mux.Handler(asynq.NewTask(TaskTypeNotify, nil))
	assert.Equal(t, TaskTypeNotify, pattern)
	_, pattern = w.mux.Handler(asynq.NewTask("report:generate", nil))
	assert.Empty(t, pattern)
}
