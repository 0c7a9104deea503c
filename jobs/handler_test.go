package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	payload PeriodClosePayload
	err     error
}

func (f *fakeEnqueuer) EnqueuePeriodClose(_ context.Context, payload PeriodClosePayload) (*asynq.TaskInfo, error) {
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func newTestRouter(enqueuer Enqueuer) chi.Router {
	h := NewHandler(nil, enqueuer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}

func TestEnqueuePeriodCloseForExplicitPeriod(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/period-close", strings.NewReader(`{"period":"2024-03"}`))
	newTestRouter(enqueuer).ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, "2024-03", enqueuer.payload.PeriodKey)
	require.Contains(t, rr.Body.String(), `"task_id":"task-1"`)
}

func TestEnqueuePeriodCloseDefaultsToPreviousMonth(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/period-close", nil)
	newTestRouter(enqueuer).ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Empty(t, enqueuer.payload.PeriodKey)
}

func TestEnqueuePeriodCloseRejectsBadPeriod(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/period-close", strings.NewReader(`{"period":"March"}`))
	newTestRouter(enqueuer).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEnqueuePeriodCloseQueueFailure(t *testing.T) {
	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/period-close", strings.NewReader(`{"period":"2024-03"}`))
	newTestRouter(enqueuer).ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
