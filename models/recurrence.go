package models

import "time"

// Recurrence types.
const (
	RecurrenceForever = "FOREVER"
	RecurrenceCount   = "COUNT"
	RecurrenceEndDate = "END_DATE"
)

// Recurrence binds a client to a repeating (dayOfWeek, timeOfDay) pattern
// across future slots of a service. At most one active recurrence may exist
// per (client, service, provider, dayOfWeek, timeOfDay) key.
type Recurrence struct {
	ID              string    `bson:"id" json:"id"`
	ClientID        string    `bson:"clientId" json:"clientId"`
	ServiceID       string    `bson:"serviceId" json:"serviceId"`
	ProviderID      string    `bson:"providerId" json:"providerId"`
	DayOfWeek       int       `bson:"dayOfWeek" json:"dayOfWeek"` // ISO, 1 = Monday
	TimeOfDay       int       `bson:"timeOfDay" json:"timeOfDay"` // slot start, minutes from midnight
	Type            string    `bson:"type" json:"type"`
	OccurrenceCount int       `bson:"occurrenceCount,omitempty" json:"occurrenceCount,omitempty"` // COUNT budget, source slot included
	AssignedCount   int       `bson:"assignedCount" json:"assignedCount"`                         // slots enrolled so far, source slot included
	EndDate         string    `bson:"endDate,omitempty" json:"endDate,omitempty"`                 // END_DATE bound, inclusive
	Active          bool      `bson:"active" json:"active"`
	SourceSlotID    string    `bson:"sourceSlotId" json:"sourceSlotId"`
	CreatedBy       string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidOn reports whether the recurrence should still claim a slot on the
// given date. COUNT budgets are tracked on the record itself via
// AssignedCount, so validity never depends on an external tally.
func (r *Recurrence) ValidOn(date string) bool {
	if !r.Active {
		return false
	}
	switch r.Type {
	case RecurrenceForever:
		return true
	case RecurrenceEndDate:
		return date <= r.EndDate
	case RecurrenceCount:
		return r.AssignedCount < r.OccurrenceCount
	}
	return false
}

// FeasibilityReport is the result of scanning the bounded horizon for slots
// matching a prospective recurrence pattern.
type FeasibilityReport struct {
	Feasible         bool     `json:"feasible"`
	AvailableCount   int      `json:"availableCount"`
	ConflictingCount int      `json:"conflictingCount"`
	AvailableDates   []string `json:"availableDates"`
	ConflictingDates []string `json:"conflictingDates"`
	Verdict          string   `json:"verdict"`
}
