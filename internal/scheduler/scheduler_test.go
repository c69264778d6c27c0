package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/observability"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *recordingRefresher) Refresh(_ context.Context, city string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, city)
	if r.fail[city] {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingRefresher) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestRunOnce_RefreshesEveryCityDespiteFailures(t *testing.T) {
	r := &recordingRefresher{fail: map[string]bool{"Oslo": true}}
	s := New([]string{"Oslo", "Rome"}, time.Hour, time.Second, r, observability.NopLogger())

	s.RunOnce()
	assert.Equal(t, []string{"Oslo", "Rome"}, r.Calls())
}

func TestStart_NoCitiesSchedulesNothing(t *testing.T) {
	r := &recordingRefresher{}
	s := New(nil, time.Hour, time.Second, r, observability.NopLogger())

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Empty(t, r.Calls())
}

func TestStart_RunsImmediately(t *testing.T) {
	r := &recordingRefresher{}
	s := New([]string{"Paris"}, time.Hour, time.Second, r, observability.NopLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return len(r.Calls()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
