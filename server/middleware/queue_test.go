package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/recipegen/recipegen/server/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePassesRequestsThrough(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 2, Metrics: metrics.NewMetrics()})

	handler := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recipe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, qm.GetQueueSize(), "slot released after completion")
}

func TestQueueRejectsWhenFull(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 1, Metrics: metrics.NewMetrics()})

	release := make(chan struct{})
	occupied := make(chan struct{})

	handler := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(occupied)
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/recipe", nil))
	}()

	select {
	case <-occupied:
	case <-time.After(time.Second):
		t.Fatal("first request never reached the handler")
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recipe", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	wg.Wait()
}

func TestQueueShutdownDrains(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 10, Metrics: metrics.NewMetrics()})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, qm.Shutdown(ctx))
}

func TestQueueSetMaxSize(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 5})
	assert.Equal(t, int64(5), qm.GetMaxSize())

	qm.SetMaxSize(20)
	assert.Equal(t, int64(20), qm.GetMaxSize())
}
