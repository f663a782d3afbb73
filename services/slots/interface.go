package slots

import (
	"context"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/utils"

	"go.uber.org/zap"
)

// WaitlistNotifier is what the state machine needs from the waitlist engine:
// freed capacity is offered onward, successful enrollments reconcile any
// pending notification.
type WaitlistNotifier interface {
	OnSlotReleased(ctx context.Context, slot *models.Slot) error
	Fulfill(ctx context.Context, slot *models.Slot, clientID string) error
}

// SlotEngine owns the booking state machine of individual slots.
type SlotEngine interface {
	Enroll(ctx context.Context, slotID, clientID, actor string) (*models.Slot, error)
	Unenroll(ctx context.Context, slotID, clientID, actor string) (*models.Slot, error)
	// CompleteElapsed is the end-of-day sweep: reserved slots whose end has
	// passed become completed. Idempotent.
	CompleteElapsed(ctx context.Context) (int64, error)
	// ListClientEnrollments returns the client's bookings for one service,
	// recurrence-assigned ones included.
	ListClientEnrollments(ctx context.Context, clientID, serviceID string) ([]models.Enrollment, error)
}

// DefaultSlotEngine is the production implementation.
type DefaultSlotEngine struct {
	Repo     slotRepo.SlotRepository
	Waitlist WaitlistNotifier
	Audit    audit.AuditService
	Clock    utils.Clock
	Logger   *zap.Logger
}
