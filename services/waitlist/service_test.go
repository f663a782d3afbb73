package waitlist

import (
	"context"
	"testing"
	"time"

	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Mock repositories
type MockWaitlistRepository struct {
	mock.Mock
}

func (m *MockWaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWaitlistRepository) GetByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) CountWaiting(ctx context.Context, serviceID string) (int64, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWaitlistRepository) FindWaiting(ctx context.Context, serviceID, date string) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) FindWaitingByService(ctx context.Context, serviceID string) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) HasActiveEntry(ctx context.Context, clientID, serviceID, date string) (bool, error) {
	args := m.Called(ctx, clientID, serviceID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockWaitlistRepository) FindNotifiedForClient(ctx context.Context, clientID, serviceID, date string) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx, clientID, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) FindExpired(ctx context.Context, now time.Time) ([]models.WaitlistEntry, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) MarkNotified(ctx context.Context, id, slotID string, notifiedAt, expiresAt time.Time) error {
	args := m.Called(ctx, id, slotID, notifiedAt, expiresAt)
	return args.Error(0)
}

func (m *MockWaitlistRepository) MarkExpired(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWaitlistRepository) MarkFulfilled(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWaitlistRepository) MarkCancelled(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWaitlistRepository) SetPositions(ctx context.Context, positions map[string]int) error {
	args := m.Called(ctx, positions)
	return args.Error(0)
}

func (m *MockWaitlistRepository) EnsureIndexes() error {
	args := m.Called()
	return args.Error(0)
}

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

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *MockServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	args := m.Called(ctx, svc)
	return args.Error(0)
}

func (m *MockServiceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockServiceRepository) ListByProvider(ctx context.Context, providerID string) ([]models.Service, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *MockServiceRepository) ListAll(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) NotifySlotAvailable(ctx context.Context, entry models.WaitlistEntry, slot models.Slot) error {
	args := m.Called(ctx, entry, slot)
	return args.Error(0)
}

func (m *MockNotificationService) NotifySlotCancelled(ctx context.Context, clientID string, slot models.Slot) error {
	args := m.Called(ctx, clientID, slot)
	return args.Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

func newEngine(repo *MockWaitlistRepository, slots *MockSlotRepository, services *MockServiceRepository, notify *MockNotificationService) *DefaultEngine {
	return &DefaultEngine{
		Repo:     repo,
		Slots:    slots,
		Services: services,
		Notify:   notify,
		Audit:    audit.NopAuditService{},
		Locker:   utils.NoopLocker{},
		Clock:    fixedClock{t: testNow},
		Logger:   zap.NewNop(),
	}
}

func waitlistedService() *models.Service {
	return &models.Service{ID: "svc", WaitlistEnabled: true, WaitlistExpirationMinutes: 15}
}

func TestEnqueueAssignsNextPosition(t *testing.T) {
	repo := new(MockWaitlistRepository)
	slots := new(MockSlotRepository)
	services := new(MockServiceRepository)
	engine := newEngine(repo, slots, services, new(MockNotificationService))
	ctx := context.Background()

	services.On("GetByID", ctx, "svc").Return(waitlistedService(), nil).Once()
	repo.On("HasActiveEntry", ctx, "client-x", "svc", "2026-09-07").Return(false, nil).Once()
	repo.On("CountWaiting", ctx, "svc").Return(int64(2), nil).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.WaitlistEntry")).Return(nil).Once()

	entry, err := engine.Enqueue(ctx, EnqueueRequest{
		ClientID: "client-x", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 540, TimeTo: 720,
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, entry.Position)
	assert.Equal(t, models.WaitlistWaiting, entry.Status)
	assert.Equal(t, 15, entry.ExpirationMinutes)
}

func TestEnqueueRejectsDisabledService(t *testing.T) {
	repo := new(MockWaitlistRepository)
	services := new(MockServiceRepository)
	engine := newEngine(repo, new(MockSlotRepository), services, new(MockNotificationService))
	ctx := context.Background()

	services.On("GetByID", ctx, "svc").Return(&models.Service{ID: "svc", WaitlistEnabled: false}, nil).Once()

	_, err := engine.Enqueue(ctx, EnqueueRequest{
		ClientID: "client-x", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 540, TimeTo: 720,
	})
	assert.Equal(t, utils.CodeValidation, utils.ErrorCode(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnqueueRejectsFreeSpecificSlot(t *testing.T) {
	repo := new(MockWaitlistRepository)
	slots := new(MockSlotRepository)
	services := new(MockServiceRepository)
	engine := newEngine(repo, slots, services, new(MockNotificationService))
	ctx := context.Background()

	services.On("GetByID", ctx, "svc").Return(waitlistedService(), nil).Once()
	slots.On("GetByID", ctx, "s1").Return(&models.Slot{ID: "s1", ServiceID: "svc",
		Date: "2026-09-07", Start: 540, End: 570, Status: models.SlotFree, FreeSlots: 1, Capacity: 1}, nil).Once()

	_, err := engine.Enqueue(ctx, EnqueueRequest{
		ClientID: "client-x", ServiceID: "svc", Type: models.WaitlistSpecific, SlotID: "s1",
	})
	assert.Equal(t, utils.CodeValidation, utils.ErrorCode(err))
}

func TestEnqueueRejectsDuplicateEntry(t *testing.T) {
	repo := new(MockWaitlistRepository)
	services := new(MockServiceRepository)
	engine := newEngine(repo, new(MockSlotRepository), services, new(MockNotificationService))
	ctx := context.Background()

	services.On("GetByID", ctx, "svc").Return(waitlistedService(), nil).Once()
	repo.On("HasActiveEntry", ctx, "client-x", "svc", "2026-09-07").Return(true, nil).Once()

	_, err := engine.Enqueue(ctx, EnqueueRequest{
		ClientID: "client-x", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 540, TimeTo: 720,
	})
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))
}

// Specific entries bound to the released slot beat covering time windows,
// whatever their positions say.
func TestOnSlotReleasedPrefersSpecificOverWindow(t *testing.T) {
	repo := new(MockWaitlistRepository)
	notify := new(MockNotificationService)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), notify)
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}

	window := models.WaitlistEntry{ID: "w", ClientID: "b", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 480, TimeTo: 720, Position: 1, Status: models.WaitlistWaiting, ExpirationMinutes: 15}
	specific := models.WaitlistEntry{ID: "sp", ClientID: "a", ServiceID: "svc", Type: models.WaitlistSpecific,
		SlotID: "s1", Date: "2026-09-07", TimeFrom: 540, TimeTo: 570, Position: 2, Status: models.WaitlistWaiting, ExpirationMinutes: 15}

	repo.On("FindWaiting", ctx, "svc", "2026-09-07").Return([]models.WaitlistEntry{window, specific}, nil).Once()
	repo.On("MarkNotified", ctx, "sp", "s1", testNow, testNow.Add(15*time.Minute)).Return(nil).Once()
	repo.On("FindWaitingByService", ctx, "svc").Return([]models.WaitlistEntry{
		{ID: "w", Position: 1},
	}, nil).Once()
	notify.On("NotifySlotAvailable", ctx, mock.Anything, *slot).Return(nil).Once()

	assert.NoError(t, engine.OnSlotReleased(ctx, slot))
	repo.AssertNotCalled(t, "MarkNotified", ctx, "w", mock.Anything, mock.Anything, mock.Anything)
	notify.AssertExpectations(t)
}

func TestOnSlotReleasedFallsBackToWindowByPosition(t *testing.T) {
	repo := new(MockWaitlistRepository)
	notify := new(MockNotificationService)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), notify)
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}

	first := models.WaitlistEntry{ID: "w1", ClientID: "a", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 480, TimeTo: 720, Position: 1, Status: models.WaitlistWaiting, ExpirationMinutes: 15}
	second := models.WaitlistEntry{ID: "w2", ClientID: "b", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 480, TimeTo: 720, Position: 2, Status: models.WaitlistWaiting, ExpirationMinutes: 15}
	narrow := models.WaitlistEntry{ID: "w0", ClientID: "c", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 600, TimeTo: 660, Position: 3, Status: models.WaitlistWaiting, ExpirationMinutes: 15}

	repo.On("FindWaiting", ctx, "svc", "2026-09-07").Return([]models.WaitlistEntry{first, second, narrow}, nil).Once()
	repo.On("MarkNotified", ctx, "w1", "s1", testNow, testNow.Add(15*time.Minute)).Return(nil).Once()
	repo.On("FindWaitingByService", ctx, "svc").Return([]models.WaitlistEntry{
		{ID: "w2", Position: 2},
		{ID: "w0", Position: 3},
	}, nil).Once()
	repo.On("SetPositions", ctx, map[string]int{"w2": 1, "w0": 2}).Return(nil).Once()
	notify.On("NotifySlotAvailable", ctx, mock.Anything, *slot).Return(nil).Once()

	assert.NoError(t, engine.OnSlotReleased(ctx, slot))
	repo.AssertExpectations(t)
}

// Notifying an entry removes it from the WAITING set; the remaining entries
// must immediately renumber to a dense 1..N so the next enqueue cannot mint
// a duplicate rank.
func TestOnSlotReleasedKeepsPositionsDense(t *testing.T) {
	repo := new(MockWaitlistRepository)
	services := new(MockServiceRepository)
	notify := new(MockNotificationService)
	engine := newEngine(repo, new(MockSlotRepository), services, notify)
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	a := models.WaitlistEntry{ID: "a", ClientID: "a", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 480, TimeTo: 720, Position: 1, Status: models.WaitlistWaiting, ExpirationMinutes: 15}
	b := models.WaitlistEntry{ID: "b", ClientID: "b", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 1000, TimeTo: 1100, Position: 2, Status: models.WaitlistWaiting, ExpirationMinutes: 15}

	repo.On("FindWaiting", ctx, "svc", "2026-09-07").Return([]models.WaitlistEntry{a, b}, nil).Once()
	repo.On("MarkNotified", ctx, "a", "s1", testNow, testNow.Add(15*time.Minute)).Return(nil).Once()
	// b is the only WAITING entry left and slides into rank 1
	repo.On("FindWaitingByService", ctx, "svc").Return([]models.WaitlistEntry{
		{ID: "b", Position: 2},
	}, nil).Once()
	repo.On("SetPositions", ctx, map[string]int{"b": 1}).Return(nil).Once()
	notify.On("NotifySlotAvailable", ctx, mock.Anything, *slot).Return(nil).Once()

	assert.NoError(t, engine.OnSlotReleased(ctx, slot))
	repo.AssertExpectations(t)

	// a fresh enqueue now lands at rank 2, not a duplicate of b's old rank
	services.On("GetByID", ctx, "svc").Return(waitlistedService(), nil).Once()
	repo.On("HasActiveEntry", ctx, "c", "svc", "2026-09-07").Return(false, nil).Once()
	repo.On("CountWaiting", ctx, "svc").Return(int64(1), nil).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*models.WaitlistEntry")).Return(nil).Once()

	created, err := engine.Enqueue(ctx, EnqueueRequest{
		ClientID: "c", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", TimeFrom: 540, TimeTo: 720,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, created.Position)
}

func TestOnSlotReleasedNoCandidateIsNoop(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}
	repo.On("FindWaiting", ctx, "svc", "2026-09-07").Return([]models.WaitlistEntry{}, nil).Once()

	assert.NoError(t, engine.OnSlotReleased(ctx, slot))
	repo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnSlotReleasedIgnoresFullOrTerminalSlot(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	assert.NoError(t, engine.OnSlotReleased(ctx, &models.Slot{ID: "s1", Status: models.SlotReserved, FreeSlots: 0}))
	assert.NoError(t, engine.OnSlotReleased(ctx, &models.Slot{ID: "s2", Status: models.SlotCancelled, FreeSlots: 1}))
	repo.AssertNotCalled(t, "FindWaiting", mock.Anything, mock.Anything, mock.Anything)
}

// A NOTIFIED entry past its deadline must never survive a sweep.
func TestSweepExpiredNeverLeavesNotified(t *testing.T) {
	repo := new(MockWaitlistRepository)
	slots := new(MockSlotRepository)
	engine := newEngine(repo, slots, new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	notifiedAt := testNow.Add(-20 * time.Minute)
	expiresAt := notifiedAt.Add(15 * time.Minute) // already past
	entry := models.WaitlistEntry{ID: "e1", ClientID: "a", ServiceID: "svc", Type: models.WaitlistTimeWindow,
		Date: "2026-09-07", NotifiedSlotID: "s1", Status: models.WaitlistNotified,
		ExpirationMinutes: 15, NotifiedAt: &notifiedAt, ExpiresAt: &expiresAt}

	repo.On("FindExpired", ctx, testNow).Return([]models.WaitlistEntry{entry}, nil).Once()
	repo.On("MarkExpired", ctx, "e1").Return(nil).Once()
	slots.On("UpdateStatus", ctx, "s1", models.SlotFreeAfterCancel).Return(nil).Once()

	swept, err := engine.SweepExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)
	repo.AssertExpectations(t)
	slots.AssertExpectations(t)
}

func TestSweepExpiredCascadesSpecificEntries(t *testing.T) {
	repo := new(MockWaitlistRepository)
	slots := new(MockSlotRepository)
	notify := new(MockNotificationService)
	engine := newEngine(repo, slots, new(MockServiceRepository), notify)
	ctx := context.Background()

	expired := models.WaitlistEntry{ID: "e1", ClientID: "a", ServiceID: "svc", Type: models.WaitlistSpecific,
		SlotID: "s1", NotifiedSlotID: "s1", Date: "2026-09-07", Status: models.WaitlistNotified, ExpirationMinutes: 15}
	next := models.WaitlistEntry{ID: "e2", ClientID: "b", ServiceID: "svc", Type: models.WaitlistSpecific,
		SlotID: "s1", Date: "2026-09-07", TimeFrom: 540, TimeTo: 570, Position: 1,
		Status: models.WaitlistWaiting, ExpirationMinutes: 15}
	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570,
		Status: models.SlotFree, FreeSlots: 1, Capacity: 1}

	repo.On("FindExpired", ctx, testNow).Return([]models.WaitlistEntry{expired}, nil).Once()
	repo.On("MarkExpired", ctx, "e1").Return(nil).Once()
	slots.On("GetByID", ctx, "s1").Return(slot, nil).Once()
	repo.On("FindWaiting", ctx, "svc", "2026-09-07").Return([]models.WaitlistEntry{next}, nil).Once()
	repo.On("MarkNotified", ctx, "e2", "s1", testNow, testNow.Add(15*time.Minute)).Return(nil).Once()
	repo.On("FindWaitingByService", ctx, "svc").Return([]models.WaitlistEntry{}, nil).Once()
	notify.On("NotifySlotAvailable", ctx, mock.Anything, *slot).Return(nil).Once()

	swept, err := engine.SweepExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)
	repo.AssertExpectations(t)
}

func TestSweepExpiredIsolatesFailures(t *testing.T) {
	repo := new(MockWaitlistRepository)
	slots := new(MockSlotRepository)
	engine := newEngine(repo, slots, new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	bad := models.WaitlistEntry{ID: "bad", Type: models.WaitlistTimeWindow, NotifiedSlotID: "sX", Status: models.WaitlistNotified}
	good := models.WaitlistEntry{ID: "good", Type: models.WaitlistTimeWindow, NotifiedSlotID: "sY", Status: models.WaitlistNotified}

	repo.On("FindExpired", ctx, testNow).Return([]models.WaitlistEntry{bad, good}, nil).Once()
	repo.On("MarkExpired", ctx, "bad").Return(assert.AnError).Once()
	repo.On("MarkExpired", ctx, "good").Return(nil).Once()
	slots.On("UpdateStatus", ctx, "sY", models.SlotFreeAfterCancel).Return(nil).Once()

	swept, err := engine.SweepExpired(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, swept)
	repo.AssertExpectations(t)
}

func TestCancelEntryRenumbersDensely(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	repo.On("GetByID", ctx, "e2").Return(&models.WaitlistEntry{
		ID: "e2", ClientID: "client-x", ServiceID: "svc", Position: 2, Status: models.WaitlistWaiting,
	}, nil).Once()
	repo.On("MarkCancelled", ctx, "e2").Return(nil).Once()
	// entries e1(pos1) and e3(pos3) remain; e3 shifts into the gap
	repo.On("FindWaitingByService", ctx, "svc").Return([]models.WaitlistEntry{
		{ID: "e1", Position: 1},
		{ID: "e3", Position: 3},
	}, nil).Once()
	repo.On("SetPositions", ctx, map[string]int{"e3": 2}).Return(nil).Once()

	assert.NoError(t, engine.CancelEntry(ctx, "e2", "client-x"))
	repo.AssertExpectations(t)
}

func TestCancelEntryOwnershipMismatchReadsAsMissing(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	repo.On("GetByID", ctx, "e1").Return(&models.WaitlistEntry{ID: "e1", ClientID: "owner"}, nil).Once()

	err := engine.CancelEntry(ctx, "e1", "intruder")
	assert.Equal(t, utils.CodeNotFound, utils.ErrorCode(err))
	repo.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
}

func TestCancelEntryTerminalStateConflicts(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	repo.On("GetByID", ctx, "e1").Return(&models.WaitlistEntry{
		ID: "e1", ClientID: "client-x", ServiceID: "svc", Status: models.WaitlistExpired,
	}, nil).Once()
	repo.On("MarkCancelled", ctx, "e1").Return(mongo.ErrNoDocuments).Once()

	err := engine.CancelEntry(ctx, "e1", "client-x")
	assert.Equal(t, utils.CodeConflict, utils.ErrorCode(err))
}

func TestFulfillClosesMatchingNotifiedEntry(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570}
	repo.On("FindNotifiedForClient", ctx, "client-x", "svc", "2026-09-07").Return([]models.WaitlistEntry{
		{ID: "e1", ClientID: "client-x", Type: models.WaitlistSpecific, SlotID: "other", Date: "2026-09-07"},
		{ID: "e2", ClientID: "client-x", Type: models.WaitlistTimeWindow, Date: "2026-09-07", TimeFrom: 480, TimeTo: 720},
	}, nil).Once()
	repo.On("MarkFulfilled", ctx, "e2").Return(nil).Once()

	assert.NoError(t, engine.Fulfill(ctx, slot, "client-x"))
	repo.AssertNotCalled(t, "MarkFulfilled", ctx, "e1")
}

func TestFulfillNoMatchingEntryIsNoop(t *testing.T) {
	repo := new(MockWaitlistRepository)
	engine := newEngine(repo, new(MockSlotRepository), new(MockServiceRepository), new(MockNotificationService))
	ctx := context.Background()

	slot := &models.Slot{ID: "s1", ServiceID: "svc", Date: "2026-09-07", Start: 540, End: 570}
	repo.On("FindNotifiedForClient", ctx, "client-x", "svc", "2026-09-07").Return([]models.WaitlistEntry{}, nil).Once()

	assert.NoError(t, engine.Fulfill(ctx, slot, "client-x"))
	repo.AssertNotCalled(t, "MarkFulfilled", mock.Anything, mock.Anything)
}
