package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/creatorlink/creatorlink/internal/jobs"
)

type stubPruner struct {
	removed int64
	err     error
	calls   int
}

func (s *stubPruner) PruneSessions(context.Context) (int64, error) {
	s.calls++
	return s.removed, s.err
}

func TestSessionsPruneJobHandle(t *testing.T) {
	pruner := &stubPruner{removed: 4}
	job := NewSessionsPruneJob(pruner, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewSessionsPruneTask(SessionsPrunePayload{})
	require.NoError(t, err)
	require.Equal(t, TaskSessionsPrune, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, pruner.calls)
}

func TestSessionsPruneJobPropagatesFailure(t *testing.T) {
	boom := errors.New("db down")
	job := NewSessionsPruneJob(&stubPruner{err: boom}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskSessionsPrune, nil))
	assert.ErrorIs(t, err, boom)
}

func TestSessionsPruneJobSkipsRetryOnBadPayload(t *testing.T) {
	pruner := &stubPruner{}
	job := NewSessionsPruneJob(pruner, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskSessionsPrune, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, pruner.calls)
}

func TestSessionsPruneJobRequiresPruner(t *testing.T) {
	var job *SessionsPruneJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskSessionsPrune, nil)))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func serveHealth(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return res
}

func TestHealthWithoutInspector(t *testing.T) {
	res := serveHealth(t, NewHandler(nil, nil))
	require.Equal(t, http.StatusOK, res.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault}, body)
}

func TestHealthReportsPending(t *testing.T) {
	res := serveHealth(t, NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3}}, nil))
	require.Equal(t, http.StatusOK, res.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pending)
}

func TestHealthInspectorFailure(t *testing.T) {
	res := serveHealth(t, NewHandler(stubInspector{err: errors.New("redis gone")}, nil))
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}
