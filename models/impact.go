package models

// AffectedSlot describes a reserved slot that would no longer fit inside a
// proposed set of availability windows.
type AffectedSlot struct {
	Slot    Slot     `json:"slot"`
	Clients []Client `json:"clients"` // enrolled clients, for manual outreach
}

// ImpactReport is the read-only result of availability change analysis.
type ImpactReport struct {
	ServiceID     string         `json:"serviceId"`
	AffectedCount int            `json:"affectedCount"`
	Affected      []AffectedSlot `json:"affected"`
}
