package intake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"leadintake/internal/domain/lead"
	"leadintake/internal/pkg/metrics"
)

func newTestSession(id string, actor lead.Actor) *Session {
	return newSession(id, actor, "temp-"+id, lead.NewDraft(actor))
}

func TestStore_OwnerOnly(t *testing.T) {
	s := NewStore(time.Minute, metrics.NewNop(), nil)
	s.Put(newTestSession("s1", agent))

	got, err := s.Get("s1", agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	_, err = s.Get("s1", superAdmin.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.Get("nope", agent.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.True(t, s.Delete("s1"))
	assert.False(t, s.Delete("s1"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(30*time.Minute, nil, nil)
	s.now = func() time.Time { return now }

	var evicted []string
	s.OnEvict(func(id string) { evicted = append(evicted, id) })

	s.Put(newTestSession("old", agent))
	now = now.Add(20 * time.Minute)
	s.Put(newTestSession("fresh", agent))
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, s.Len())

	// Get refreshes the idle timer
	_, err := s.Get("fresh", agent.ID)
	require.NoError(t, err)
	now = now.Add(25 * time.Minute)
	assert.Equal(t, 0, s.Sweep())
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewStore(time.Nanosecond, nil, nil)
	s.Put(newTestSession("s1", agent))

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx, time.Millisecond)
	}()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	wg.Wait()
}
