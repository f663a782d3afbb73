package models

// AvailabilityWindow is a recurring weekly time range during which a service
// accepts slots. Start/End are minutes from midnight (e.g., 540 for 9:00 AM).
// DayOfWeek is ISO: 1 = Monday .. 7 = Sunday.
type AvailabilityWindow struct {
	ID        string `bson:"id" json:"id"`
	ServiceID string `bson:"serviceId" json:"serviceId"`
	DayOfWeek int    `bson:"dayOfWeek" json:"dayOfWeek"`
	Start     int    `bson:"start" json:"start"`
	End       int    `bson:"end" json:"end"`
}

// Unavailability suppresses slot generation over a date span. An empty
// ServiceID means the blackout is global (e.g., a public holiday).
type Unavailability struct {
	ID        string `bson:"id" json:"id"`
	ServiceID string `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	StartDate string `bson:"startDate" json:"startDate"` // "2006-01-02"
	EndDate   string `bson:"endDate" json:"endDate"`
	Start     int    `bson:"start" json:"start"` // minutes from midnight on StartDate
	End       int    `bson:"end" json:"end"`     // minutes from midnight on EndDate
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Covers reports whether the given date falls inside the blackout span.
// Whole days between StartDate and EndDate are always covered; on the edge
// days the blackout still suppresses the entire day whenever any part of it
// is blacked out, which matches how generation treats blackout dates.
func (u Unavailability) Covers(date string) bool {
	return date >= u.StartDate && date <= u.EndDate
}
