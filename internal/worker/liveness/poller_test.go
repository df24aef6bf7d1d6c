package liveness_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gojoyas/internal/pkg/logger"
	"gojoyas/internal/worker/liveness"
)

func TestCheck_TracksTransitions(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := liveness.New(srv.URL, time.Minute, logger.NewLogger("error"))

	_, ok := p.Status()
	assert.False(t, ok, "sem consulta ainda")

	st := p.Check(context.Background())
	assert.True(t, st.Up)
	assert.Equal(t, http.StatusOK, st.StatusCode)

	healthy.Store(false)
	st = p.Check(context.Background())
	assert.False(t, st.Up)
	assert.Equal(t, "status 503", st.Err)

	last, ok := p.Status()
	require.True(t, ok)
	assert.Equal(t, st, last)
}

func TestCheck_UnreachableURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := liveness.New(url, 0, logger.NewLogger("error"))
	st := p.Check(context.Background())

	assert.False(t, st.Up)
	assert.NotEmpty(t, st.Err)
	assert.Zero(t, st.StatusCode)
}

func TestRun_PollsUntilCanceled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	p := liveness.New(srv.URL, 10*time.Millisecond, logger.NewLogger("error"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return hits.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run não retornou após o cancelamento")
	}
}
