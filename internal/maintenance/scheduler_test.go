package maintenance

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	sessionAges []time.Duration
	jobAges     []time.Duration
}

func (r *recorder) CleanupOldSessions(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionAges = append(r.sessionAges, maxAge)
	return 1
}

func (r *recorder) CleanupOldJobs(maxAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobAges = append(r.jobAges, maxAge)
	return 0
}

func (r *recorder) runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessionAges)
}

func TestRunOncePassesAges(t *testing.T) {
	rec := &recorder{}
	s, err := New(rec, rec, Options{
		Schedule:      "@every 1h",
		SessionMaxAge: 24 * time.Hour,
		JobMaxAge:     time.Hour,
	}, zerolog.Nop())
	require.NoError(t, err)

	s.RunOnce()

	assert.Equal(t, []time.Duration{24 * time.Hour}, rec.sessionAges)
	assert.Equal(t, []time.Duration{time.Hour}, rec.jobAges)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	rec := &recorder{}
	_, err := New(rec, rec, Options{Schedule: "every so often"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSchedulerRuns(t *testing.T) {
	rec := &recorder{}
	s, err := New(rec, rec, Options{Schedule: "@every 1s"}, zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return rec.runs() > 0 }, 5*time.Second, 50*time.Millisecond)
}
