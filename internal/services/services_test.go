package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "task-marketplace.com/task-marketplace/internal/configs"
	"task-marketplace.com/task-marketplace/internal/constants"
	"task-marketplace.com/task-marketplace/internal/gateway"
	"task-marketplace.com/task-marketplace/internal/locks"
	model "task-marketplace.com/task-marketplace/internal/models"
	repository "task-marketplace.com/task-marketplace/internal/repositories"
	"task-marketplace.com/task-marketplace/internal/storage"
)

const (
	clientID int64 = 11
	taskerID int64 = 22
)

var (
	client = model.Party{UserID: clientID, Role: constants.RoleClient}
	tasker = model.Party{UserID: taskerID, Role: constants.RoleTasker}
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to connect database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "failed to migrate database")
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStorage fails writes for paths the predicate selects and records
// everything else in memory.
type failingStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    func(path string) bool
}

func newFailingStorage(fail func(path string) bool) *failingStorage {
	return &failingStorage{objects: make(map[string][]byte), fail: fail}
}

func (s *failingStorage) Write(_ context.Context, path string, data []byte, _ string) error {
	if s.fail != nil && s.fail(path) {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *failingStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return storage.ErrNotFound
	}
	delete(s.objects, path)
	return nil
}

func (s *failingStorage) URL(path string) string {
	return "/uploads/" + path
}

func (s *failingStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fixture struct {
	db          *gorm.DB
	store       *repository.Store
	ledger      *LedgerService
	transitions *TransitionService
	disputes    *DisputeService
	payments    *PaymentService
	provider    *gateway.SandboxProvider
	blobs       *failingStorage
	locker      *locks.MemoryLocker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	store := repository.NewStore(db)
	log := discardLogger()
	ledger := NewLedgerService(log)
	blobs := newFailingStorage(nil)
	provider := gateway.NewSandboxProvider("http://sandbox.test")
	locker := locks.NewMemoryLocker()

	return &fixture{
		db:          db,
		store:       store,
		ledger:      ledger,
		transitions: NewTransitionService(store, ledger, blobs, time.UTC, log),
		disputes:    NewDisputeService(store, ledger, log),
		payments:    NewPaymentService(store, ledger, provider, locker, time.Minute, "", log),
		provider:    provider,
		blobs:       blobs,
		locker:      locker,
	}
}

func (f *fixture) credit(t *testing.T, party model.Party, amount int64) {
	t.Helper()
	err := f.store.Transaction(context.Background(), func(tx *repository.Store) error {
		return f.ledger.IncrementCredits(context.Background(), tx, Entry{
			Party:  party,
			Amount: amount,
			Type:   constants.PaymentDeposit,
		})
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, party model.Party) int64 {
	t.Helper()
	b, err := f.store.Ledger.Balance(context.Background(), party)
	require.NoError(t, err)
	return b
}

func (f *fixture) paymentLogCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.PaymentLog{}).Count(&n).Error)
	return n
}

func (f *fixture) newTask(t *testing.T, price int64) *model.Task {
	t.Helper()
	task, err := f.store.Tasks.CreateTask(context.Background(), repository.NewTask{
		ClientID:      clientID,
		Title:         "Fix the sink",
		Description:   "Kitchen sink is leaking",
		ProposedPrice: price,
	})
	require.NoError(t, err)
	return task
}

// seedAssignment creates a request and forces it into status without any
// ledger effect.
func (f *fixture) seedAssignment(t *testing.T, price int64, status constants.AssignmentStatus) *model.TaskAssignment {
	t.Helper()
	ctx := context.Background()

	task := f.newTask(t, price)
	a, err := f.store.Assignments.Create(ctx, task, taskerID)
	require.NoError(t, err)

	if status != constants.StatusPending {
		require.NoError(t, f.store.Assignments.CompareAndSwap(ctx, a.ID, constants.StatusPending, repository.AssignmentUpdate{Status: status}))
		require.NoError(t, f.store.Tasks.UpdateStatus(ctx, task.ID, constants.TaskStatusFor(status), false))
	}

	a, err = f.store.Assignments.FindByID(ctx, a.ID)
	require.NoError(t, err)
	return a
}

// seedDispute puts a funded assignment into Disputed with a dispute opened
// at createdAt. The client's escrowed price is not modelled.
func (f *fixture) seedDispute(t *testing.T, price int64, createdAt time.Time) (*model.TaskAssignment, *model.Dispute) {
	t.Helper()
	a := f.seedAssignment(t, price, constants.StatusDisputed)
	d, err := f.store.Disputes.Create(context.Background(), repository.NewDispute{
		TaskTakenID: a.ID,
		Reason:      "work not delivered",
		CreatedAt:   createdAt.UTC(),
	})
	require.NoError(t, err)
	return a, d
}

func (f *fixture) assignment(t *testing.T, id string) *model.TaskAssignment {
	t.Helper()
	a, err := f.store.Assignments.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) task(t *testing.T, id string) *model.Task {
	t.Helper()
	task, err := f.store.Tasks.FindByID(context.Background(), id)
	require.NoError(t, err)
	return task
}
