package models

import "time"

// Waitlist entry types.
const (
	WaitlistSpecific   = "SPECIFIC"    // waits for one exact slot
	WaitlistTimeWindow = "TIME_WINDOW" // waits for any slot inside a time range
)

// Waitlist entry statuses.
const (
	WaitlistWaiting   = "WAITING"
	WaitlistNotified  = "NOTIFIED"
	WaitlistExpired   = "EXPIRED"
	WaitlistFulfilled = "FULFILLED"
	WaitlistCancelled = "CANCELLED"
)

// WaitlistEntry is a queued request for capacity. Position is a dense 1..N
// rank among WAITING entries of the same service.
type WaitlistEntry struct {
	ID                string     `bson:"id" json:"id"`
	ClientID          string     `bson:"clientId" json:"clientId"`
	ServiceID         string     `bson:"serviceId" json:"serviceId"`
	ProviderID        string     `bson:"providerId" json:"providerId"`
	OrganizationID    string     `bson:"organizationId" json:"organizationId"`
	Type              string     `bson:"type" json:"type"`
	SlotID            string     `bson:"slotId,omitempty" json:"slotId,omitempty"`                 // set for SPECIFIC entries
	NotifiedSlotID    string     `bson:"notifiedSlotId,omitempty" json:"notifiedSlotId,omitempty"` // slot the client was offered
	Date              string     `bson:"date" json:"date"`
	TimeFrom          int        `bson:"timeFrom" json:"timeFrom"` // minutes from midnight
	TimeTo            int        `bson:"timeTo" json:"timeTo"`
	Position          int        `bson:"position" json:"position"`
	Status            string     `bson:"status" json:"status"`
	ExpirationMinutes int        `bson:"expirationMinutes" json:"expirationMinutes"`
	NotifiedAt        *time.Time `bson:"notifiedAt,omitempty" json:"notifiedAt,omitempty"`
	ExpiresAt         *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
}

// ExpirationDuration is how long a notification stays open before the sweep
// expires it.
func (w *WaitlistEntry) ExpirationDuration() time.Duration {
	return time.Duration(w.ExpirationMinutes) * time.Minute
}

// CoversSlot reports whether the entry's demand matches the given slot:
// SPECIFIC entries match on slot id, TIME_WINDOW entries on containment of
// the slot's interval within the entry's range.
func (w *WaitlistEntry) CoversSlot(s *Slot) bool {
	if w.Date != s.Date {
		return false
	}
	if w.Type == WaitlistSpecific {
		return w.SlotID == s.ID
	}
	return w.TimeFrom <= s.Start && s.End <= w.TimeTo
}
