package notification

import (
	"context"

	"slotwise/models"
)

// Notification event codes.
const (
	EventSlotAvailable = "waitlist.slot_available"
	EventSlotCancelled = "booking.slot_cancelled"
)

// NotificationService is the engine's outbound notification port. Delivery is
// fire-and-forget: the engine never waits for a delivery confirmation.
type NotificationService interface {
	NotifySlotAvailable(ctx context.Context, entry models.WaitlistEntry, slot models.Slot) error
	NotifySlotCancelled(ctx context.Context, clientID string, slot models.Slot) error
}

// Sender delivers a notification payload over a concrete transport. The
// default implementation only logs; real transports live outside the engine.
type Sender interface {
	Send(ctx context.Context, p models.NotifyPayload) error
}
