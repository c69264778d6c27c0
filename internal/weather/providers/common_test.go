package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingServer(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func requestTo(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, url, nil)
	}
}

func TestDoRequest_NoRetriesByDefault(t *testing.T) {
	srv, hits := countingServer(t, http.StatusBadGateway)

	cfg := NewHTTPClientConfig(time.Second, 0, 0)
	_, err := doRequestWithResilience(context.Background(), cfg, newBreaker("t"), requestTo(srv.URL))

	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestDoRequest_RetriesWhenConfigured(t *testing.T) {
	srv, hits := countingServer(t, http.StatusServiceUnavailable)

	cfg := NewHTTPClientConfig(time.Second, 2, 0)
	cfg.Backoff.InitialInterval = time.Millisecond
	cfg.Backoff.MaxInterval = 2 * time.Millisecond

	_, err := doRequestWithResilience(context.Background(), cfg, newBreaker("t"), requestTo(srv.URL))
	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestDoRequest_StatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusTooManyRequests: errRateLimited,
		http.StatusNotFound:        errUnexpected,
		http.StatusInternalServerError: errServerError,
	}
	for status, want := range cases {
		srv, _ := countingServer(t, status)
		_, err := doRequestWithResilience(context.Background(), NewHTTPClientConfig(time.Second, 0, 0), newBreaker("t"), requestTo(srv.URL))
		assert.ErrorIs(t, err, want, "status %d", status)
	}
}

func TestDoRequest_Success(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK)
	resp, err := doRequestWithResilience(context.Background(), NewHTTPClientConfig(time.Second, 0, 5), newBreaker("t"), requestTo(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoRequest_InvalidConfig(t *testing.T) {
	_, err := doRequestWithResilience(context.Background(), HTTPClientConfig{}, newBreaker("t"), requestTo("http://x"))
	assert.ErrorIs(t, err, errNoHTTPClient)

	cfg := NewHTTPClientConfig(time.Second, -1, 0)
	_, err = doRequestWithResilience(context.Background(), cfg, newBreaker("t"), requestTo("http://x"))
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestDoRequest_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv, hits := countingServer(t, http.StatusInternalServerError)
	cb := newBreaker("t")
	cfg := NewHTTPClientConfig(time.Second, 0, 0)

	var err error
	for i := 0; i < 8; i++ {
		_, err = doRequestWithResilience(context.Background(), cfg, cb, requestTo(srv.URL))
	}
	assert.True(t, errors.Is(err, errCircuitOpen))
	assert.Less(t, atomic.LoadInt32(hits), int32(8))
}

func TestDoRequest_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := doRequestWithResilience(ctx, NewHTTPClientConfig(time.Second, 0, 0), newBreaker("t"), requestTo("http://x"))
	assert.ErrorIs(t, err, context.Canceled)
}
