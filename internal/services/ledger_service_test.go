package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
)

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, amount := range []int64{0, -5} {
		err := f.store.Transaction(ctx, func(tx *repository.Store) error {
			return f.ledger.IncrementCredits(ctx, tx, Entry{Party: client, Amount: amount, Type: constants.PaymentDeposit})
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

		err = f.store.Transaction(ctx, func(tx *repository.Store) error {
			return f.ledger.DecrementCredits(ctx, tx, Entry{Party: client, Amount: amount, Type: constants.PaymentWithdrawal})
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	}
	assert.Equal(t, int64(0), f.paymentLogCount(t))
}

func TestLedger_DecrementNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credit(t, tasker, 50)

	err := f.store.Transaction(ctx, func(tx *repository.Store) error {
		return f.ledger.DecrementCredits(ctx, tx, Entry{Party: tasker, Amount: 51, Type: constants.PaymentWithdrawal})
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
	assert.Equal(t, 400, apperrors.StatusCode(err))
	assert.Equal(t, int64(50), f.balance(t, tasker))
}

func TestLedger_EveryMovementIsLogged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.credit(t, client, 900)

	a := f.seedAssignment(t, 900, constants.StatusPending)
	err := f.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := f.ledger.Hold(ctx, tx, a, 900); err != nil {
			return err
		}
		return f.ledger.ReleaseFull(ctx, tx, a, 900)
	})
	require.NoError(t, err)

	logs, err := f.store.Payments.ListFor(ctx, client)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	types := []constants.PaymentType{logs[0].Type, logs[1].Type}
	assert.ElementsMatch(t, []constants.PaymentType{constants.PaymentDeposit, constants.PaymentHold}, types)
	for _, l := range logs {
		assert.Equal(t, constants.PaymentSucceeded, l.Status)
	}

	taskerLogs, err := f.store.Payments.ListFor(ctx, tasker)
	require.NoError(t, err)
	require.Len(t, taskerLogs, 1)
	assert.Equal(t, a.ID, taskerLogs[0].Reference)
	assert.Equal(t, int64(900), taskerLogs[0].Amount)
}

func TestLedger_ReleaseHalfGivesRemainderToClient(t *testing.T) {
	cases := []struct {
		price, tasker, client int64
	}{
		{800, 400, 400},
		{801, 400, 401},
		{1, 0, 1},
	}

	for _, tc := range cases {
		f := newFixture(t)
		ctx := context.Background()
		a := f.seedAssignment(t, tc.price, constants.StatusDisputed)

		err := f.store.Transaction(ctx, func(tx *repository.Store) error {
			return f.ledger.ReleaseHalf(ctx, tx, a, tc.price)
		})
		require.NoError(t, err)

		assert.Equal(t, tc.tasker, f.balance(t, tasker), "price %d", tc.price)
		assert.Equal(t, tc.client, f.balance(t, client), "price %d", tc.price)
		assert.Equal(t, tc.price, f.balance(t, tasker)+f.balance(t, client))
	}
}

func TestLedger_ConcurrentIncrementsAreAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := f.store.Transaction(ctx, func(tx *repository.Store) error {
				return f.ledger.IncrementCredits(ctx, tx, Entry{Party: tasker, Amount: 4, Type: constants.PaymentRelease})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), f.balance(t, tasker))
}

func TestLedger_BalanceRejectsNonParty(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Balance(context.Background(), f.store, model.Party{UserID: 1, Role: constants.RoleModerator})
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
}
