package slots

import (
	"context"
	"testing"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Mock repositories
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) InsertGenerated(ctx context.Context, slots []models.Slot) (int, error) {
	args := m.Called(ctx, slots)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByServiceAndDate(ctx context.Context, serviceID, date string) ([]models.Slot, error) {
	args := m.Called(ctx, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetMaxGeneratedDate(ctx context.Context, serviceID string) (string, error) {
	args := m.Called(ctx, serviceID)
	return args.String(0), args.Error(1)
}

func (m *MockSlotRepository) FindByServiceDatesAndStart(ctx context.Context, serviceID string, dates []string, startMinutes int) ([]models.Slot, error) {
	args := m.Called(ctx, serviceID, dates, startMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Slot), args.Error(1)
}

func (m *MockSlotRepository) FindFutureReserved(ctx context.Context, serviceID, afterDate string) ([]models.Slot, error) {
	args := m.Called(ctx, serviceID, afterDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Slot), args.Error(1)
}

func (m *MockSlotRepository) UpdateStatus(ctx context.Context, slotID, status string) error {
	args := m.Called(ctx, slotID, status)
	return args.Error(0)
}

func (m *MockSlotRepository) DeleteByServiceFromDate(ctx context.Context, serviceID, fromDate string) (int64, error) {
	args := m.Called(ctx, serviceID, fromDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSlotRepository) Enroll(ctx context.Context, slotID string, enr *models.Enrollment) (*models.Slot, error) {
	args := m.Called(ctx, slotID, enr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockSlotRepository) Unenroll(ctx context.Context, slotID, clientID string) (*models.Slot, error) {
	args := m.Called(ctx, slotID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockSlotRepository) CompleteElapsed(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSlotRepository) FindEnrollmentsBySlot(ctx context.Context, slotID string) ([]models.Enrollment, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *MockSlotRepository) FindEnrollmentsByClientAndService(ctx context.Context, clientID, serviceID string) ([]models.Enrollment, error) {
	args := m.Called(ctx, clientID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Enrollment), args.Error(1)
}

func (m *MockSlotRepository) EnsureIndexes() error {
	args := m.Called()
	return args.Error(0)
}

type MockWaitlistNotifier struct {
	mock.Mock
}

func (m *MockWaitlistNotifier) OnSlotReleased(ctx context.Context, slot *models.Slot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockWaitlistNotifier) Fulfill(ctx context.Context, slot *models.Slot, clientID string) error {
	args := m.Called(ctx, slot, clientID)
	return args.Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newEngine(repo *MockSlotRepository, wl *MockWaitlistNotifier) *DefaultSlotEngine {
	return &DefaultSlotEngine{
		Repo:     repo,
		Waitlist: wl,
		Audit:    audit.NopAuditService{},
		Clock:    fixedClock{t: time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)},
		Logger:   zap.NewNop(),
	}
}

func TestEnrollCapacityOneSlot(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	free := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	reserved := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotReserved, FreeSlots: 0, Capacity: 1, ClientIDs: []string{"client-x"}}

	repo.On("GetByID", ctx, "s1").Return(free, nil).Once()
	repo.On("Enroll", ctx, "s1", mock.AnythingOfType("*models.Enrollment")).Return(reserved, nil).Once()
	wl.On("Fulfill", ctx, reserved, "client-x").Return(nil).Once()

	got, err := engine.Enroll(ctx, "s1", "client-x", "client-x")
	assert.NoError(t, err)
	assert.Equal(t, models.SlotReserved, got.Status)
	assert.Equal(t, 0, got.FreeSlots)
	repo.AssertExpectations(t)
	wl.AssertExpectations(t)
}

func TestEnrollFullSlotConflicts(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	full := &models.Slot{ID: "s1", Status: models.SlotReserved, FreeSlots: 0, Capacity: 1}
	repo.On("GetByID", ctx, "s1").Return(full, nil).Once()

	_, err := engine.Enroll(ctx, "s1", "client-y", "client-y")
	assert.Error(t, err)
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))
	repo.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrollTerminalSlotConflicts(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	cancelled := &models.Slot{ID: "s1", Status: models.SlotCancelled, FreeSlots: 1, Capacity: 1}
	repo.On("GetByID", ctx, "s1").Return(cancelled, nil).Once()

	_, err := engine.Enroll(ctx, "s1", "client-x", "client-x")
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))
}

func TestEnrollRacedOutOfCapacity(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	free := &models.Slot{ID: "s1", Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	repo.On("GetByID", ctx, "s1").Return(free, nil).Once()
	repo.On("Enroll", ctx, "s1", mock.AnythingOfType("*models.Enrollment")).Return(nil, slotRepo.ErrNoCapacity).Once()

	_, err := engine.Enroll(ctx, "s1", "client-y", "client-y")
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))
}

func TestEnrollMissingClientID(t *testing.T) {
	engine := newEngine(new(MockSlotRepository), new(MockWaitlistNotifier))

	_, err := engine.Enroll(context.Background(), "s1", "", "")
	assert.Equal(t, utils.CodeValidation, utils.ErrorCode(err))
}

func TestUnenrollReleasesSeatAndOffersWaitlist(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	freed := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	repo.On("Unenroll", ctx, "s1", "client-x").Return(freed, nil).Once()
	wl.On("OnSlotReleased", ctx, freed).Return(nil).Once()

	got, err := engine.Unenroll(ctx, "s1", "client-x", "client-x")
	assert.NoError(t, err)
	assert.Equal(t, models.SlotFree, got.Status)
	assert.Equal(t, 1, got.FreeSlots)
	wl.AssertExpectations(t)
}

func TestUnenrollNotEnrolled(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	repo.On("Unenroll", ctx, "s1", "client-z").Return(nil, slotRepo.ErrNotEnrolled).Once()

	_, err := engine.Unenroll(ctx, "s1", "client-z", "client-z")
	assert.Equal(t, utils.CodeNotFound, utils.ErrorCode(err))
	wl.AssertNotCalled(t, "OnSlotReleased", mock.Anything, mock.Anything)
}

func TestUnenrollSurvivesWaitlistFailure(t *testing.T) {
	repo := new(MockSlotRepository)
	wl := new(MockWaitlistNotifier)
	engine := newEngine(repo, wl)
	ctx := context.Background()

	freed := &models.Slot{ID: "s1", Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	repo.On("Unenroll", ctx, "s1", "client-x").Return(freed, nil).Once()
	wl.On("OnSlotReleased", ctx, freed).Return(assert.AnError).Once()

	got, err := engine.Unenroll(ctx, "s1", "client-x", "client-x")
	assert.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCompleteElapsed(t *testing.T) {
	repo := new(MockSlotRepository)
	engine := newEngine(repo, new(MockWaitlistNotifier))
	ctx := context.Background()

	repo.On("CompleteElapsed", ctx, engine.Clock.Now()).Return(int64(3), nil).Once()

	moved, err := engine.CompleteElapsed(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), moved)
}

func TestListClientEnrollments(t *testing.T) {
	repo := new(MockSlotRepository)
	engine := newEngine(repo, new(MockWaitlistNotifier))
	ctx := context.Background()

	enrollments := []models.Enrollment{
		{SlotID: "s1", ClientID: "client-x", RecurrenceID: ""},
		{SlotID: "s2", ClientID: "client-x", RecurrenceID: "rec-1"},
	}
	repo.On("FindEnrollmentsByClientAndService", ctx, "client-x", "svc").Return(enrollments, nil).Once()

	got, err := engine.ListClientEnrollments(ctx, "client-x", "svc")
	assert.NoError(t, err)
	assert.Equal(t, enrollments, got)
}

func TestListClientEnrollmentsRequiresIDs(t *testing.T) {
	repo := new(MockSlotRepository)
	engine := newEngine(repo, new(MockWaitlistNotifier))
	ctx := context.Background()

	_, err := engine.ListClientEnrollments(ctx, "", "svc")
	assert.Equal(t, utils.CodeValidation, utils.ErrorCode(err))

	_, err = engine.ListClientEnrollments(ctx, "client-x", "")
	assert.Equal(t, utils.CodeValidation, utils.ErrorCode(err))
	repo.AssertNotCalled(t, "FindEnrollmentsByClientAndService", ctx, mock.Anything, mock.Anything)
}
