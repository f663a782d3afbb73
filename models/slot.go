package models

import "time"

// Slot statuses. CANCELLED and COMPLETED are absorbing: once a slot lands in
// either, enrollment changes keep the freeSlots bookkeeping but never move
// the status again.
const (
	SlotFree                 = "FREE"
	SlotPartiallyReserved    = "PARTIALLY_RESERVED"
	SlotReserved             = "RESERVED"
	SlotCancelled            = "CANCELLED"
	SlotCompleted            = "COMPLETED"
	SlotFreeAfterCancel      = "FREE_AFTER_CANCEL"
	SlotReservedAfterCancel  = "RESERVED_AFTER_CANCEL"
	SlotCompletedAfterCancel = "COMPLETED_AFTER_CANCEL"
)

// Slot is a concrete bookable time interval materialized from a recurring
// availability window. Identity (Date/Start/End) is immutable once created;
// only Status, FreeSlots and ClientIDs mutate.
type Slot struct {
	ID         string    `bson:"id" json:"id"`
	ServiceID  string    `bson:"serviceId" json:"serviceId"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	Date       string    `bson:"date" json:"date"`   // "2006-01-02"
	Start      int       `bson:"start" json:"start"` // minutes from midnight
	End        int       `bson:"end" json:"end"`
	Status     string    `bson:"status" json:"status"`
	FreeSlots  int       `bson:"freeSlots" json:"freeSlots"`
	Capacity   int       `bson:"capacity" json:"capacity"` // capacity snapshot at generation time
	ClientIDs  []string  `bson:"clientIds,omitempty" json:"clientIds,omitempty"`
	Version    int       `bson:"version" json:"version"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// Terminal reports whether the slot status is absorbing.
func (s *Slot) Terminal() bool {
	switch s.Status {
	case SlotCancelled, SlotCompleted, SlotCompletedAfterCancel:
		return true
	}
	return false
}

// NextStatus derives the status a slot should carry after an enrollment
// change left it with freeSlots of capacity seats unclaimed. Terminal
// statuses are absorbing; the AFTER_CANCEL marker survives re-enrollment.
func NextStatus(current string, freeSlots, capacity int) string {
	switch current {
	case SlotCancelled, SlotCompleted, SlotCompletedAfterCancel:
		return current
	}
	afterCancel := current == SlotFreeAfterCancel || current == SlotReservedAfterCancel
	switch {
	case freeSlots <= 0:
		if afterCancel {
			return SlotReservedAfterCancel
		}
		return SlotReserved
	case freeSlots >= capacity:
		if afterCancel {
			return SlotFreeAfterCancel
		}
		return SlotFree
	default:
		return SlotPartiallyReserved
	}
}

// EndTime resolves the slot's absolute end instant in loc.
func (s *Slot) EndTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(s.End) * time.Minute), nil
}
