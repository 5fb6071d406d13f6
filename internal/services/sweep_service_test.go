package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/constants"
	model "task-marketplace.com/task-marketplace/internal/models"
)

const staleAfter = 14 * 24 * time.Hour

func newSweep(f *fixture, resolver disputeResolver, now time.Time) *SweepService {
	s := NewSweepService(f.store.Disputes, resolver, f.locker, SweepConfig{
		Schedule:    "@hourly",
		StaleAfter:  staleAfter,
		ItemTimeout: time.Second,
		BatchSize:   2,
		LeaseTTL:    time.Minute,
	}, discardLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestSweep_ResolvesStaleDisputesWithHalfRelease(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	stale, staleDispute := f.seedDispute(t, 800, now.Add(-15*24*time.Hour))
	_, fresh := f.seedDispute(t, 800, now.Add(-13*24*time.Hour))

	report, err := newSweep(f, f.disputes, now).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Resolved: 1}, report)

	resolved, err := f.disputes.GetDispute(context.Background(), staleDispute.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ModeratorAction)
	assert.Equal(t, constants.AutoResolved, *resolved.ModeratorAction)
	require.NotNil(t, resolved.ModeratorID)
	assert.Equal(t, int64(0), *resolved.ModeratorID)

	assert.Equal(t, constants.StatusCompleted, f.assignment(t, stale.ID).Status)
	assert.Equal(t, int64(400), f.balance(t, client))
	assert.Equal(t, int64(400), f.balance(t, tasker))

	untouched, err := f.disputes.GetDispute(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, untouched.Open())
}

func TestSweep_BoundaryIsExactlyFourteenDays(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	_, onTheDot := f.seedDispute(t, 100, now.Add(-staleAfter))
	_, justShort := f.seedDispute(t, 100, now.Add(-staleAfter+time.Second))

	_, err := newSweep(f, f.disputes, now).SweepOnce(context.Background())
	require.NoError(t, err)

	d, err := f.disputes.GetDispute(context.Background(), onTheDot.ID)
	require.NoError(t, err)
	assert.False(t, d.Open())

	d, err = f.disputes.GetDispute(context.Background(), justShort.ID)
	require.NoError(t, err)
	assert.True(t, d.Open())
}

func TestSweep_NeverTouchesResolvedDisputes(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	_, d := f.seedDispute(t, 800, now.Add(-30*24*time.Hour))

	_, err := f.disputes.ResolveDispute(context.Background(), ResolveRequest{
		DisputeID:   d.ID,
		Action:      constants.ReleaseFull,
		ModeratorID: 5,
	})
	require.NoError(t, err)

	report, err := newSweep(f, f.disputes, now).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, report)

	stored, err := f.disputes.GetDispute(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ReleaseFull, *stored.ModeratorAction)
	assert.Equal(t, int64(800), f.balance(t, tasker))
}

// flakyResolver fails or panics for chosen disputes and delegates the rest.
type flakyResolver struct {
	next   disputeResolver
	fail   map[string]bool
	panics map[string]bool
	hang   map[string]bool

	mu   sync.Mutex
	seen []string
}

func (r *flakyResolver) ResolveDispute(ctx context.Context, req ResolveRequest) (*model.Dispute, error) {
	r.mu.Lock()
	r.seen = append(r.seen, req.DisputeID)
	r.mu.Unlock()

	switch {
	case r.panics[req.DisputeID]:
		panic("gateway exploded")
	case r.fail[req.DisputeID]:
		return nil, errors.New("gateway unavailable")
	case r.hang[req.DisputeID]:
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.next.ResolveDispute(ctx, req)
}

func TestSweep_IsolatesPerDisputeFailures(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

	_, panicking := f.seedDispute(t, 800, now.Add(-40*24*time.Hour))
	_, failing := f.seedDispute(t, 800, now.Add(-39*24*time.Hour))
	_, hanging := f.seedDispute(t, 800, now.Add(-38*24*time.Hour))
	okAssignment, ok := f.seedDispute(t, 800, now.Add(-20*24*time.Hour))

	resolver := &flakyResolver{
		next:   f.disputes,
		panics: map[string]bool{panicking.ID: true},
		fail:   map[string]bool{failing.ID: true},
		hang:   map[string]bool{hanging.ID: true},
	}
	sweep := newSweep(f, resolver, now)
	sweep.cfg.ItemTimeout = 50 * time.Millisecond

	report, err := sweep.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Resolved: 1, Failed: 3}, report)
	assert.ElementsMatch(t, []string{panicking.ID, failing.ID, hanging.ID, ok.ID}, resolver.seen)

	assert.Equal(t, constants.StatusCompleted, f.assignment(t, okAssignment.ID).Status)
}

func TestSweep_SkipsWhenAnotherInstanceLeads(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	_, d := f.seedDispute(t, 800, now.Add(-20*24*time.Hour))

	lease, err := f.locker.Acquire(context.Background(), sweepLockKey, time.Minute)
	require.NoError(t, err)
	defer lease.Release(context.Background())

	report, err := newSweep(f, f.disputes, now).SweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Skipped)

	stored, err := f.disputes.GetDispute(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
}

func TestSweep_StartRejectsBadSchedule(t *testing.T) {
	f := newFixture(t)
	s := newSweep(f, f.disputes, time.Now())
	s.cfg.Schedule = "every now and then"

	assert.Error(t, s.Start())
}

func TestSweep_StartAndShutdown(t *testing.T) {
	f := newFixture(t)
	s := newSweep(f, f.disputes, time.Now())

	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Shutdown(ctx)
}
