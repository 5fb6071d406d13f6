package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

func TestResolveDispute_Actions(t *testing.T) {
	cases := []struct {
		action        constants.ModeratorAction
		wantStatus    constants.AssignmentStatus
		wantTask      constants.TaskStatus
		clientBalance int64
		taskerBalance int64
		released      bool
	}{
		{constants.RefundTokens, constants.StatusCancelled, constants.TaskAvailable, 800, 0, false},
		{constants.ReleaseFull, constants.StatusCompleted, constants.TaskClosed, 0, 800, true},
		{constants.ReleaseHalf, constants.StatusCompleted, constants.TaskClosed, 400, 400, true},
		{constants.RejectDispute, constants.StatusOngoing, constants.TaskInProgress, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			f := newFixture(t)
			a, d := f.seedDispute(t, 800, time.Now())

			resolved, err := f.disputes.ResolveDispute(context.Background(), ResolveRequest{
				DisputeID:   d.ID,
				Action:      tc.action,
				ModeratorID: 7,
				Notes:       "reviewed chat logs",
			})
			require.NoError(t, err)

			require.NotNil(t, resolved.ModeratorAction)
			assert.Equal(t, tc.action, *resolved.ModeratorAction)
			require.NotNil(t, resolved.ModeratorID)
			assert.Equal(t, int64(7), *resolved.ModeratorID)
			assert.Equal(t, "reviewed chat logs", resolved.ModeratorNotes)
			assert.NotNil(t, resolved.ResolvedAt)

			got := f.assignment(t, a.ID)
			assert.Equal(t, tc.wantStatus, got.Status)
			assert.Equal(t, tc.released, got.PaymentReleased)
			assert.Equal(t, tc.wantTask, f.task(t, a.TaskID).Status)

			assert.Equal(t, tc.clientBalance, f.balance(t, client))
			assert.Equal(t, tc.taskerBalance, f.balance(t, tasker))
		})
	}
}

func TestResolveDispute_IgnoresCallerStatus(t *testing.T) {
	f := newFixture(t)
	a, d := f.seedDispute(t, 800, time.Now())

	_, err := f.disputes.ResolveDispute(context.Background(), ResolveRequest{
		DisputeID:       d.ID,
		Action:          constants.RejectDispute,
		ModeratorID:     7,
		RequestedStatus: constants.StatusCompleted,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusOngoing, f.assignment(t, a.ID).Status)
}

func TestResolveDispute_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	_, d := f.seedDispute(t, 800, time.Now())
	ctx := context.Background()

	_, err := f.disputes.ResolveDispute(ctx, ResolveRequest{DisputeID: d.ID, Action: constants.ReleaseFull, ModeratorID: 7})
	require.NoError(t, err)

	_, err = f.disputes.ResolveDispute(ctx, ResolveRequest{DisputeID: d.ID, Action: constants.RefundTokens, ModeratorID: 8})
	assert.Equal(t, 409, apperrors.StatusCode(err))

	assert.Equal(t, int64(800), f.balance(t, tasker))
	assert.Equal(t, int64(0), f.balance(t, client))
}

func TestResolveDispute_Validation(t *testing.T) {
	f := newFixture(t)
	_, d := f.seedDispute(t, 800, time.Now())
	ctx := context.Background()

	_, err := f.disputes.ResolveDispute(ctx, ResolveRequest{DisputeID: d.ID, Action: "split_three_ways"})
	assert.Equal(t, 400, apperrors.StatusCode(err))

	_, err = f.disputes.ResolveDispute(ctx, ResolveRequest{DisputeID: "missing", Action: constants.ReleaseFull})
	assert.ErrorIs(t, err, apperrors.ErrDisputeNotFound)
}

func TestResolveDispute_AssignmentMovedOnRollsBack(t *testing.T) {
	f := newFixture(t)
	a, d := f.seedDispute(t, 800, time.Now())
	ctx := context.Background()

	require.NoError(t, f.db.Exec("UPDATE task_taken SET status = ? WHERE id = ?", constants.StatusCompleted, a.ID).Error)

	_, err := f.disputes.ResolveDispute(ctx, ResolveRequest{DisputeID: d.ID, Action: constants.ReleaseFull, ModeratorID: 7})
	assert.Equal(t, 409, apperrors.StatusCode(err))

	assert.Equal(t, int64(0), f.balance(t, tasker))
	stored, err := f.disputes.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
}

func TestArchiveDispute(t *testing.T) {
	f := newFixture(t)
	_, d := f.seedDispute(t, 800, time.Now())
	ctx := context.Background()

	open, err := f.disputes.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	require.NoError(t, f.disputes.ArchiveDispute(ctx, d.ID))

	open, err = f.disputes.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	stored, err := f.disputes.GetDispute(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.Archived)

	assert.ErrorIs(t, f.disputes.ArchiveDispute(ctx, "missing"), apperrors.ErrDisputeNotFound)
}
