package models

import "time"

// Service is a bookable offering whose concrete slots are materialized by the
// slot generator.
type Service struct {
	ID                        string    `bson:"id" json:"id"`
	ProviderID                string    `bson:"providerId" json:"providerId"`
	OrganizationID            string    `bson:"organizationId" json:"organizationId"`
	Name                      string    `bson:"name" json:"name"`
	DurationMinutes           int       `bson:"durationMinutes" json:"durationMinutes"` // length of one slot
	Capacity                  int       `bson:"capacity" json:"capacity"`               // seats per slot, >= 1
	OffsetMinutes             int       `bson:"offsetMinutes" json:"offsetMinutes"`     // gap between consecutive slot starts
	FutureDays                int       `bson:"futureDays" json:"futureDays"`           // generation horizon in days
	WaitlistEnabled           bool      `bson:"waitlistEnabled" json:"waitlistEnabled"`
	WaitlistExpirationMinutes int       `bson:"waitlistExpirationMinutes" json:"waitlistExpirationMinutes"`
	CreatedAt                 time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt                 time.Time `bson:"updatedAt" json:"updatedAt"`
}
