package models

import "time"

// Enrollment links a client to a slot. It is inserted in the same
// transaction that decrements the slot's free capacity.
type Enrollment struct {
	ID           string    `bson:"id" json:"id"`
	SlotID       string    `bson:"slotId" json:"slotId"`
	ServiceID    string    `bson:"serviceId" json:"serviceId"`
	ClientID     string    `bson:"clientId" json:"clientId"`
	RecurrenceID string    `bson:"recurrenceId,omitempty" json:"recurrenceId,omitempty"` // set when auto-assigned
	CreatedBy    string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`       // acting user, for attribution
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Client holds the contact details surfaced by availability impact analysis.
type Client struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}
