package waitlist

import (
	"context"

	serviceRepo "slotwise/database/repository/service"
	slotRepo "slotwise/database/repository/slot"
	waitlistRepo "slotwise/database/repository/waitlist"
	"slotwise/models"
	"slotwise/services/audit"
	"slotwise/services/notification"
	"slotwise/utils"

	"go.uber.org/zap"
)

// EnqueueRequest carries the inputs for joining a service's waitlist.
type EnqueueRequest struct {
	ClientID       string `json:"clientId"`
	ServiceID      string `json:"serviceId"`
	ProviderID     string `json:"providerId"`
	OrganizationID string `json:"organizationId"`
	Type           string `json:"type"`
	SlotID         string `json:"slotId,omitempty"`
	Date           string `json:"date"`
	TimeFrom       int    `json:"timeFrom"`
	TimeTo         int    `json:"timeTo"`
}

// Engine queues demand for full slots and hands freed capacity to the
// longest-waiting matching entry.
type Engine interface {
	Enqueue(ctx context.Context, req EnqueueRequest) (*models.WaitlistEntry, error)
	CancelEntry(ctx context.Context, entryID, clientID string) error
	// SweepExpired forcibly expires NOTIFIED entries past their deadline and
	// cascades the freed capacity onward. Runs every minute.
	SweepExpired(ctx context.Context) (int, error)

	// The slot state machine's view of the waitlist.
	OnSlotReleased(ctx context.Context, slot *models.Slot) error
	Fulfill(ctx context.Context, slot *models.Slot, clientID string) error
}

// DefaultEngine is the production implementation. Candidate selection and
// position renumbering are serialized per service through the Locker.
type DefaultEngine struct {
	Repo     waitlistRepo.WaitlistRepository
	Slots    slotRepo.SlotRepository
	Services serviceRepo.ServiceRepository
	Notify   notification.NotificationService
	Audit    audit.AuditService
	Locker   utils.Locker
	Clock    utils.Clock
	Logger   *zap.Logger
}
